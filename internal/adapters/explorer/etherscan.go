// Package explorer fetches verified contract types from Etherscan-compatible block explorers.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

const defaultTimeout = 30 * time.Second

// Config describes one explorer endpoint
type Config struct {
	Name    string
	BaseURL string
	APIKey  string
	ChainID uint64
	Timeout time.Duration
}

// Client talks to the Etherscan v2 style API (also served by Blockscout)
type Client struct {
	name    string
	baseURL string
	apiKey  string
	chainID uint64
	client  *http.Client
	log     *slog.Logger
}

var _ usecase.ExplorerClient = (*Client)(nil)

// NewClient creates a new explorer client
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("explorer %q has no URL", cfg.Name)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid explorer URL %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := cfg.Name
	if name == "" {
		name = "etherscan"
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		chainID: cfg.ChainID,
		client:  &http.Client{Timeout: timeout},
		log:     log.With("component", "explorer", "explorer", name),
	}, nil
}

func (c *Client) Name() string {
	return c.name
}

// apiResponse represents an Etherscan API response. Result is an array on
// success and a plain string on failure.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (r apiResponse) isOK() bool {
	return r.Status == "1"
}

func (r apiResponse) resultText() string {
	var text string
	if err := json.Unmarshal(r.Result, &text); err == nil {
		return text
	}
	return string(r.Result)
}

type sourceCode struct {
	ContractName   string `json:"ContractName"`
	ABI            string `json:"ABI"`
	Proxy          string `json:"Proxy"`
	Implementation string `json:"Implementation"`
}

// GetContractType returns the verified contract type at addr. Unverified
// contracts yield nil without an error.
func (c *Client) GetContractType(ctx context.Context, addr common.Address) (*models.ContractType, error) {
	resp, err := c.get(ctx, addr, "getsourcecode")
	if err != nil {
		return nil, err
	}
	if !resp.isOK() {
		return nil, c.failure(addr, resp)
	}

	var sources []sourceCode
	if err := json.Unmarshal(resp.Result, &sources); err != nil {
		return nil, c.wrap(addr, fmt.Errorf("failed to parse response: %w", err))
	}
	if len(sources) == 0 || !strings.HasPrefix(strings.TrimSpace(sources[0].ABI), "[") {
		c.log.Debug("contract not verified", "address", addr.Hex())
		return nil, nil
	}

	src := sources[0]
	entries, err := models.ParseABI([]byte(src.ABI))
	if err != nil {
		return nil, c.wrap(addr, err)
	}
	c.log.Debug("fetched verified contract", "address", addr.Hex(), "name", src.ContractName)
	return &models.ContractType{Name: src.ContractName, ABI: entries}, nil
}

func (c *Client) get(ctx context.Context, addr common.Address, action string) (*apiResponse, error) {
	query := url.Values{}
	if c.chainID != 0 {
		query.Set("chainid", strconv.FormatUint(c.chainID, 10))
	}
	query.Set("module", "contract")
	query.Set("action", action)
	query.Set("address", addr.Hex())
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api?"+query.Encode(), nil)
	if err != nil {
		return nil, c.wrap(addr, fmt.Errorf("failed to create request: %w", err))
	}
	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, c.wrap(addr, fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.ExplorerError{
			Explorer:    c.name,
			Address:     addr,
			RateLimited: true,
			Err:         fmt.Errorf("%s rate limit reached: %w", c.name, domain.ErrRateLimited),
		}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, c.wrap(addr, fmt.Errorf("unexpected status %d", httpResp.StatusCode))
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, c.wrap(addr, fmt.Errorf("failed to parse response: %w", err))
	}
	return &resp, nil
}

func (c *Client) failure(addr common.Address, resp *apiResponse) error {
	text := resp.resultText()
	if strings.Contains(strings.ToLower(text), "rate limit") {
		return &domain.ExplorerError{
			Explorer:    c.name,
			Address:     addr,
			RateLimited: true,
			Err:         fmt.Errorf("%s: %s: %w", c.name, text, domain.ErrRateLimited),
		}
	}
	return c.wrap(addr, fmt.Errorf("error from %s: %s (%s)", c.name, resp.Message, text))
}

func (c *Client) wrap(addr common.Address, err error) error {
	var explorerErr *domain.ExplorerError
	if errors.As(err, &explorerErr) {
		return err
	}
	return &domain.ExplorerError{Explorer: c.name, Address: addr, Err: err}
}
