package cryptopanic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/upstream"
	"CoinPulse/pkg/util"
)

const Name = "cryptopanic"

// codes maps common CoinGecko ids to CryptoPanic currency codes.
var codes = map[string]string{
	"bitcoin":     "BTC",
	"ethereum":    "ETH",
	"solana":      "SOL",
	"ripple":      "XRP",
	"cardano":     "ADA",
	"dogecoin":    "DOGE",
	"binancecoin": "BNB",
	"polkadot":    "DOT",
	"litecoin":    "LTC",
	"tron":        "TRX",
}

// CurrencyCode resolves a coin id or ticker to a CryptoPanic currency code.
func CurrencyCode(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if code, ok := codes[id]; ok {
		return code
	}
	return strings.ToUpper(id)
}

// Client implements repository.NewsProvider.
type Client struct {
	base   *upstream.Base
	apiKey string
}

func New(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	return &Client{
		base:   upstream.NewBase(Name, baseURL, timeout, upstream.WithLimiter(limiter)),
		apiKey: apiKey,
	}
}

type post struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	PublishedAt string `json:"published_at"`
	Source      *struct {
		Title string `json:"title"`
	} `json:"source"`
	Currencies []struct {
		Code string `json:"code"`
	} `json:"currencies"`
	Votes    *models.VoteCounts `json:"votes"`
	Metadata *struct {
		Description string `json:"description"`
		Image       string `json:"image"`
	} `json:"metadata"`
}

type postsResponse struct {
	Results []post `json:"results"`
}

// Posts lists public news posts. With an empty currency it returns the
// latest news; otherwise the hot English posts for that currency. At most
// limit posts are returned when limit is positive.
func (c *Client) Posts(ctx context.Context, currency string, limit int) ([]models.NewsPost, error) {
	q := map[string][]string{
		"auth_token": {c.apiKey},
		"public":     {"true"},
		"kind":       {"news"},
	}
	if currency != "" {
		q["currencies"] = []string{CurrencyCode(currency)}
		q["filter"] = []string{"hot"}
		q["regions"] = []string{"en"}
	}

	var resp postsResponse
	if err := c.base.GetJSON(ctx, "/posts/", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%s: response has no results: %w", Name, models.ErrMalformedPayload)
	}

	out := make([]models.NewsPost, 0, len(resp.Results))
	for _, p := range resp.Results {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		out = append(out, toNewsPost(p))
	}
	return out, nil
}

func toNewsPost(p post) models.NewsPost {
	n := models.NewsPost{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		URL:         p.URL,
		PublishedAt: util.ParseTimeDefault(p.PublishedAt, time.Time{}),
		Currencies:  make([]string, 0, len(p.Currencies)),
		Votes:       p.Votes,
	}
	var sourceTitle string
	if p.Source != nil {
		sourceTitle = p.Source.Title
	}
	n.Source = util.FirstNonEmpty(sourceTitle, p.Domain, "unknown")
	if p.Metadata != nil {
		n.Description = p.Metadata.Description
		n.ImageURL = p.Metadata.Image
	}
	for _, cur := range p.Currencies {
		n.Currencies = append(n.Currencies, cur.Code)
	}
	return n
}
