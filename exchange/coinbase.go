package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/regimebot/market"
)

// BaseURL is the Coinbase Exchange REST endpoint.
const BaseURL = "https://api.exchange.coinbase.com"

// Credentials are the API key triple Coinbase issues per portfolio.
type Credentials struct {
	Key        string
	Secret     string // base64-encoded signing key
	Passphrase string
}

// Coinbase implements MarketData, BalanceSource, and Executor against the
// Coinbase Exchange REST API. Candle fetches are unauthenticated; balances
// and orders require credentials.
type Coinbase struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

// NewCoinbase creates a Coinbase client. Credentials may be zero for
// market-data-only (paper) use.
func NewCoinbase(creds Credentials) *Coinbase {
	return &Coinbase{
		baseURL: BaseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// productID converts a pair like "BTC/USD" into Coinbase's "BTC-USD".
func productID(pair string) string {
	return strings.ReplaceAll(pair, "/", "-")
}

// RecentCandles fetches bars from /products/{id}/candles. Coinbase returns
// rows as [time, low, high, open, close, volume] newest first; we reorder to
// oldest first and clamp to the requested limit.
func (c *Coinbase) RecentCandles(ctx context.Context, pair, timeframe string, since time.Time, limit int) ([]market.Candle, error) {
	tf, err := market.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("granularity", strconv.Itoa(int(tf.Seconds())))
	if !since.IsZero() {
		params.Set("start", since.UTC().Format(time.RFC3339))
		params.Set("end", since.UTC().Add(time.Duration(limit)*tf).Format(time.RFC3339))
	}

	path := fmt.Sprintf("/products/%s/candles", productID(pair))
	body, err := c.do(ctx, http.MethodGet, path+"?"+params.Encode(), nil, false)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s %s: %w", pair, timeframe, err)
	}

	// Each row is [time, low, high, open, close, volume].
	var rows [][6]float64
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, market.Candle{
			Time:   time.Unix(int64(r[0]), 0).UTC(),
			Low:    r[1],
			High:   r[2],
			Open:   r[3],
			Close:  r[4],
			Volume: r[5],
		})
	}
	sort.Slice(candles, func(i, k int) bool {
		return candles[i].Time.Before(candles[k].Time)
	})

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// Balances fetches /accounts and maps currency -> free/total.
func (c *Coinbase) Balances(ctx context.Context) (map[string]Balance, error) {
	body, err := c.do(ctx, http.MethodGet, "/accounts", nil, true)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}

	var accounts []struct {
		Currency  string `json:"currency"`
		Balance   string `json:"balance"`
		Available string `json:"available"`
	}
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}

	out := make(map[string]Balance, len(accounts))
	for _, a := range accounts {
		total, err := strconv.ParseFloat(a.Balance, 64)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", a.Currency, err)
		}
		free, err := strconv.ParseFloat(a.Available, 64)
		if err != nil {
			return nil, fmt.Errorf("available %s: %w", a.Currency, err)
		}
		out[a.Currency] = Balance{Free: free, Total: total}
	}
	return out, nil
}

// SubmitMarketOrder places a market order and returns the exchange order id.
func (c *Coinbase) SubmitMarketOrder(ctx context.Context, pair string, side market.Side, qty float64) (string, error) {
	if !side.Valid() {
		return "", fmt.Errorf("invalid order side %q", side)
	}

	req := map[string]string{
		"type":       "market",
		"side":       string(side),
		"product_id": productID(pair),
		"size":       strconv.FormatFloat(qty, 'f', 8, 64),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", payload, true)
	if err != nil {
		return "", fmt.Errorf("submit %s %s: %w", side, pair, err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	return resp.ID, nil
}

// CancelOrder cancels a resting order by exchange id.
func (c *Coinbase) CancelOrder(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/orders/"+id, nil, true)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", id, err)
	}
	return nil
}

// do performs one request, signing it when authed is set, and returns the
// response body. Non-2xx responses surface as errors with a trimmed body.
func (c *Coinbase) do(ctx context.Context, method, requestPath string, payload []byte, authed bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "regimebot")

	if authed {
		if err := c.sign(req, method, requestPath, payload); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return b, nil
}

// sign adds the CB-ACCESS-* headers: the signature is an HMAC-SHA256 of
// timestamp+method+path+body keyed with the base64-decoded API secret.
func (c *Coinbase) sign(req *http.Request, method, requestPath string, payload []byte) error {
	if c.creds.Key == "" || c.creds.Secret == "" {
		return fmt.Errorf("missing coinbase credentials")
	}

	key, err := base64.StdEncoding.DecodeString(c.creds.Secret)
	if err != nil {
		return fmt.Errorf("decode api secret: %w", err)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(ts + method + requestPath))
	mac.Write(payload)

	req.Header.Set("CB-ACCESS-KEY", c.creds.Key)
	req.Header.Set("CB-ACCESS-SIGN", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	req.Header.Set("CB-ACCESS-TIMESTAMP", ts)
	req.Header.Set("CB-ACCESS-PASSPHRASE", c.creds.Passphrase)
	return nil
}
