package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clearview-uk/clearview/internal/common"
	"github.com/clearview-uk/clearview/internal/ixbrl"
)

// FileClient serves registry data from a local directory of downloaded
// filings. Each iXBRL document sits directly under the root; the company
// number is recovered from the filename. An optional profiles.yaml beside
// the filings supplies profile metadata (SIC codes in particular).
type FileClient struct {
	root     string
	profiles map[string]CompanyProfile
}

// profilesFile is the optional metadata file under the filings root.
const profilesFile = "profiles.yaml"

type profileEntry struct {
	Name         string   `yaml:"name"`
	Status       string   `yaml:"status"`
	SICCodes     []string `yaml:"sic_codes"`
	Incorporated string   `yaml:"incorporated"`
}

// NewFileClient creates a client rooted at dir.
func NewFileClient(dir string) (*FileClient, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("filings directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filings path %s is not a directory", dir)
	}

	c := &FileClient{
		root:     dir,
		profiles: make(map[string]CompanyProfile),
	}
	if err := c.loadProfiles(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileClient) loadProfiles() error {
	data, err := os.ReadFile(filepath.Join(c.root, profilesFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", profilesFile, err)
	}

	var entries map[string]profileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", profilesFile, err)
	}

	for number, entry := range entries {
		profile := CompanyProfile{
			CompanyNumber: number,
			Name:          entry.Name,
			Status:        entry.Status,
			SICCodes:      entry.SICCodes,
		}
		if entry.Incorporated != "" {
			t, parseErr := time.Parse("2006-01-02", entry.Incorporated)
			if parseErr != nil {
				return fmt.Errorf("profile %s: bad incorporated date %q", number, entry.Incorporated)
			}
			profile.Incorporated = t
		}
		c.profiles[number] = profile
	}
	return nil
}

// GetProfile returns the profile from profiles.yaml, or ErrNotFound when the
// company has no entry there.
func (c *FileClient) GetProfile(_ context.Context, companyNumber string) (*CompanyProfile, error) {
	profile, ok := c.profiles[companyNumber]
	if !ok {
		return nil, fmt.Errorf("profile for %s: %w", companyNumber, common.ErrNotFound)
	}
	return &profile, nil
}

// ListAccountsFilings returns one Filing per document under the root whose
// filename yields the requested company number, newest first.
func (c *FileClient) ListAccountsFilings(ctx context.Context, companyNumber string) ([]Filing, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read filings directory: %w", err)
	}

	var filings []Filing
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isFilingFile(entry.Name()) {
			continue
		}

		number := ixbrl.ExtractCompanyNumber(entry.Name(), nil)
		if number != companyNumber {
			continue
		}

		filing := Filing{
			TransactionID: entry.Name(),
			CompanyNumber: number,
			Category:      "accounts",
		}
		if info, infoErr := entry.Info(); infoErr == nil {
			filing.FiledAt = info.ModTime()
		}
		filings = append(filings, filing)
	}

	sort.Slice(filings, func(i, j int) bool {
		return filings[i].FiledAt.After(filings[j].FiledAt)
	})
	return filings, nil
}

// GetDocument opens the filing's file. The caller closes the reader.
func (c *FileClient) GetDocument(_ context.Context, filing Filing) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(c.root, filepath.Base(filing.TransactionID)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("filing %s: %w", filing.TransactionID, common.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open filing: %w", err)
	}
	return f, nil
}

func isFilingFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Ensure FileClient implements the Client interface.
var _ Client = (*FileClient)(nil)
