package sheetsmodule

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client reads and appends spreadsheet ranges
type Client interface {
	Values(ctx context.Context, rng string) ([][]interface{}, error)
	Append(ctx context.Context, rng string, rows [][]interface{}) error
}

// GoogleClient talks to the Sheets v4 API with an installed-app OAuth2 token
type GoogleClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// NewGoogleClient loads the client credentials and the saved token.
// A refreshed token is written back to the token file.
func NewGoogleClient(ctx context.Context, cfg config.SheetsConfig) (*GoogleClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is not configured")
	}
	oc, err := oauthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := readToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no usable token at %s, run the sheets-auth command: %w", cfg.TokenFile, err)
	}

	ts := &savingTokenSource{
		base: oc.TokenSource(ctx, tok),
		path: cfg.TokenFile,
		last: tok.AccessToken,
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleClient{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func (c *GoogleClient) Values(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}
	return resp.Values, nil
}

// Append adds rows after the last filled row of rng, storing cells as typed
func (c *GoogleClient) Append(ctx context.Context, rng string, rows [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

// Authorize runs the installed-app consent flow: it prints the consent URL
// to out, reads the code from in and saves the token.
func Authorize(ctx context.Context, cfg config.SheetsConfig, in io.Reader, out io.Writer) error {
	oc, err := oauthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}
	url := oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the link below, grant access and paste the code:\n%s\n> ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code is empty")
	}

	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return saveToken(cfg.TokenFile, tok)
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			logger.Warn("Failed to save refreshed sheets token", "path", s.path, "error", err)
		}
	}
	return tok, nil
}
