// Package dashboard serves the HTTP surface: the findings page, a JSON API,
// the scan trigger, and a couple of charts over what has been found so far.
package dashboard

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/assareh/fragrance-scout/internal/blob"
	"github.com/assareh/fragrance-scout/internal/config"
	"github.com/assareh/fragrance-scout/internal/domain"
	"github.com/assareh/fragrance-scout/internal/store"
)

// Server wires the routes. Scan is invoked asynchronously by the trigger
// endpoint; results are re-read from the blob store on every request so the
// page always reflects the latest completed cycle.
type Server struct {
	cfg    config.Config
	blob   blob.Store
	scan   func()
	logger *slog.Logger
	engine *gin.Engine
}

func NewServer(cfg config.Config, blobStore blob.Store, scan func(), logger *slog.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		blob:   blobStore,
		scan:   scan,
		logger: logger,
		engine: engine,
	}

	engine.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))
	engine.GET("/", s.handleIndex)
	engine.GET("/api/posts", s.handlePosts)
	engine.GET("/scan", s.handleScan)
	engine.GET("/stats", s.handleStats)
	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("dashboard listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) loadResults(c *gin.Context) ([]domain.AcceptedPost, bool) {
	results := store.NewResults(s.blob, s.cfg.Storage.ResultsKey)
	if err := results.Load(c.Request.Context()); err != nil {
		s.logger.Error("results load failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "results unavailable"})
		return nil, false
	}
	return results.All(), true
}

func (s *Server) handleIndex(c *gin.Context) {
	posts, ok := s.loadResults(c)
	if !ok {
		return
	}
	// Most recent first.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	c.HTML(http.StatusOK, "index", gin.H{"Posts": posts, "Count": len(posts)})
}

func (s *Server) handlePosts(c *gin.Context) {
	posts, ok := s.loadResults(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(posts), "posts": posts})
}

// handleScan kicks off a cycle in the background after checking the shared
// secret. With no secret configured the endpoint is open, which is only
// acceptable for local runs, so it warns.
func (s *Server) handleScan(c *gin.Context) {
	token := s.cfg.Server.ScanAuthToken
	if token == "" {
		s.logger.Warn("scan triggered without auth token configured")
	} else {
		got := c.GetHeader("X-Auth-Token")
		if got == "" {
			got = c.Query("token")
		}
		if got != token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}

	go s.scan()

	posts, ok := s.loadResults(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"message":     "scan started",
		"posts_found": len(posts),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	posts, ok := s.loadResults(c)
	if !ok {
		return
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Subreddit Dominance"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	subCounts := map[string]int{}
	for _, p := range posts {
		subCounts[p.Subreddit]++
	}
	var pieItems []opts.PieData
	for k, v := range subCounts {
		pieItems = append(pieItems, opts.PieData{Name: k, Value: v})
	}
	pie.AddSeries("Posts", pieItems)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Flair Distribution"}))
	flairCounts := map[string]int{}
	for _, p := range posts {
		flair := p.Flair
		if flair == "" {
			flair = "(none)"
		}
		flairCounts[flair]++
	}
	var barX []string
	var barY []opts.BarData
	for k, v := range flairCounts {
		barX = append(barX, k)
		barY = append(barY, opts.BarData{Value: v})
	}
	bar.SetXAxis(barX).AddSeries("Posts", barY)

	if err := pie.Render(c.Writer); err != nil {
		s.logger.Error("chart render failed", "error", err)
		return
	}
	if err := bar.Render(c.Writer); err != nil {
		s.logger.Error("chart render failed", "error", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Fragrance Scout</title>
<style>
body { font-family: Georgia, serif; max-width: 860px; margin: 2em auto; padding: 0 1em; color: #2b2b2b; }
h1 { border-bottom: 2px solid #7a5c3e; padding-bottom: 0.3em; }
article { border: 1px solid #ddd; border-radius: 6px; padding: 1em 1.2em; margin: 1em 0; }
article h2 { margin: 0 0 0.2em 0; font-size: 1.1em; }
.meta { color: #777; font-size: 0.85em; }
.reason { font-style: italic; color: #555; margin: 0.5em 0; }
.body { white-space: pre-wrap; font-size: 0.95em; }
</style>
</head>
<body>
<h1>Fragrance Scout</h1>
<p>{{.Count}} posts found so far.</p>
{{range .Posts}}
<article>
<h2><a href="{{.Link}}">{{.Title}}</a></h2>
<p class="meta">r/{{.Subreddit}} &middot; u/{{.Author}} &middot; {{.Published}}{{if .Profile}} &middot; {{.Profile.TotalKarma}} karma, {{.Profile.AccountAge}}{{end}}</p>
<p class="reason">{{.Reason}}</p>
<div class="body">{{.Body}}</div>
</article>
{{else}}
<p>Nothing yet. Trigger a scan or wait for the next scheduled cycle.</p>
{{end}}
</body>
</html>`
