// Package classifier decides whether a post is a substantive niche perfume
// review, via one of two interchangeable LLM backends.
package classifier

import (
	"fmt"
	"log/slog"

	"github.com/assareh/fragrance-scout/internal/config"
	"github.com/assareh/fragrance-scout/internal/domain"
)

const filterPrompt = `You are a fragrance discovery agent tasked with identifying interesting niche and indie perfume reviews on Reddit.

**FOCUS ON:**
- Niche/indie/artisan brands (e.g., Nishane, Xerjoff, Amouage, Parfums de Marly, Roja, Zoologist, Slumberhouse, Bortnikoff, Papillon, Mona di Orio, Ormonde Jayne, Naomi Goodsir, Francesca Bianchi, Majda Bekkali, Hubigant, BDK, Areej Le Doré, etc.)
- Detailed reviews with scent notes, impressions, longevity, sillage, projection
- First impressions, wear tests, batch comparisons
- Discussion of note breakdowns and development
- Personal experiences with specific fragrances

**IGNORE:**
- Designer/mass-market brands (Dior, Boss, Chanel, Gucci, YSL, Armani, Versace, Paco Rabanne, etc.)
- Simple mentions without substance
- Purchase questions without reviews
- Recommendation requests (asking others for suggestions)
- "What should I buy?" or "Help me choose" posts
- Collection photos without detailed commentary
- Blind buy questions or shopping advice

**INPUT:** You will receive a Reddit post title and body.

**OUTPUT:** Respond with ONLY a JSON object (no markdown formatting, no code blocks):
{
  "accept": true/false,
  "reason": "brief explanation of why this is or isn't interesting"
}

Be selective - only mark posts as interesting if they contain substantive review content about niche/indie fragrances.`

// New selects the classifier backend from configuration.
func New(cfg config.ClassifierConfig, logger *slog.Logger) (domain.Classifier, error) {
	switch cfg.Backend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("geminiApiKey is required for the gemini backend")
		}
		return NewGeminiClassifier(cfg.GeminiAPIKey, cfg.GeminiModel, logger), nil
	case "", "local":
		return NewLocalClassifier(cfg.LocalURL, cfg.LocalModel, logger), nil
	case "mock":
		return NewMockClassifier(true, "mock verdict"), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend: %s (use 'gemini', 'local', or 'mock')", cfg.Backend)
	}
}

func userMessage(title, body string) string {
	return fmt.Sprintf("TITLE: %s\n\nBODY: %s", title, body)
}
