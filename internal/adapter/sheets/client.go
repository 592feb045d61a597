// Package sheets implements the ledger on a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// valuesAPI is the slice of the Sheets API the ledger needs. Row indexes are
// zero-based and include the header row.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Append(ctx context.Context, sheet string, rows [][]any) error
	DeleteRow(ctx context.Context, sheet string, index int) error
}

// Credentials identifies a Google service account. Either JSON (a key file's
// contents) or Email plus PrivateKey must be set.
type Credentials struct {
	JSON       []byte
	Email      string
	PrivateKey string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return len(c.JSON) == 0 && c.Email == "" && c.PrivateKey == ""
}

func (c Credentials) jwtConfig() (*jwt.Config, error) {
	if len(c.JSON) > 0 {
		return google.JWTConfigFromJSON(c.JSON, gsheets.SpreadsheetsScope)
	}
	if c.Email == "" || c.PrivateKey == "" {
		return nil, errors.New("service account email and private key are both required")
	}
	return &jwt.Config{
		Email: c.Email,
		// Keys pasted into env files usually carry literal "\n".
		PrivateKey: []byte(strings.ReplaceAll(c.PrivateKey, `\n`, "\n")),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}, nil
}

type serviceAPI struct {
	svc           *gsheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func newServiceAPI(ctx context.Context, spreadsheetID string, creds Credentials) (*serviceAPI, error) {
	conf, err := creds.jwtConfig()
	if err != nil {
		return nil, fmt.Errorf("service account: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &serviceAPI{svc: svc, spreadsheetID: spreadsheetID, sheetIDs: make(map[string]int64)}, nil
}

func (a *serviceAPI) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) Append(ctx context.Context, sheet string, rows [][]any) error {
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, quote(sheet), &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) DeleteRow(ctx context.Context, sheet string, index int) error {
	id, err := a.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
					// The first sheet has id 0 and row 0 is the header.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	_, err = a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) sheetID(ctx context.Context, title string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.sheetIDs[title]; ok {
		return id, nil
	}
	ss, err := a.svc.Spreadsheets.Get(a.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			a.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := a.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}

// quote wraps a sheet title for use in A1 notation.
func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
