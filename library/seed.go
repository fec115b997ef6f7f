package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed is the initial state of a library: its name, catalog and members.
type Seed struct {
	Name    string       `yaml:"name"`
	Items   []SeedItem   `yaml:"items"`
	Members []SeedMember `yaml:"members"`
}

type SeedItem struct {
	ID             string `yaml:"id"`
	Kind           string `yaml:"kind"`
	Title          string `yaml:"title"`
	ItemDetails    `yaml:",inline"`
	PriorCheckouts int `yaml:"prior_checkouts"`
}

type SeedMember struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Membership string `yaml:"membership"`
}

// ParseSeed decodes YAML seed data and validates it.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// LoadSeed reads and parses the seed file at path.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// Validate checks ids, kinds and membership types without building anything.
func (s Seed) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, it := range s.Items {
		if strings.TrimSpace(it.ID) == "" {
			errs = append(errs, fmt.Errorf("items[%d]: missing id", i))
		} else if seen[it.ID] {
			errs = append(errs, fmt.Errorf("items[%d]: duplicate id %q", i, it.ID))
		}
		seen[it.ID] = true
		if _, err := ParseItemKind(it.Kind); err != nil {
			errs = append(errs, fmt.Errorf("items[%d]: %w", i, err))
		}
		if it.PriorCheckouts < 0 {
			errs = append(errs, fmt.Errorf("items[%d]: negative prior_checkouts", i))
		}
	}
	seen = make(map[string]bool)
	for i, m := range s.Members {
		if strings.TrimSpace(m.ID) == "" {
			errs = append(errs, fmt.Errorf("members[%d]: missing id", i))
		} else if seen[m.ID] {
			errs = append(errs, fmt.Errorf("members[%d]: duplicate id %q", i, m.ID))
		}
		seen[m.ID] = true
		if _, err := ParseMembership(m.Membership); err != nil {
			errs = append(errs, fmt.Errorf("members[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, errors.Join(errs...))
	}
	return nil
}

// NewFromSeed builds a library from validated seed data. Prior checkouts are
// recorded as anonymous history at the library's current time.
func NewFromSeed(s Seed, opts ...Option) (*Library, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	lib := New(s.Name, opts...)
	now := lib.Now()

	for _, si := range s.Items {
		kind, _ := ParseItemKind(si.Kind)
		item, err := NewItem(kind, si.ID, si.Title, si.ItemDetails)
		if err != nil {
			return nil, err
		}
		for i := 0; i < si.PriorCheckouts; i++ {
			item.RecordHistoricalCheckout(fmt.Sprintf("historical-%d", i), now.Add(-time.Duration(si.PriorCheckouts-i)*24*time.Hour))
		}
		lib.AddItem(item)
	}
	for _, sm := range s.Members {
		membership, _ := ParseMembership(sm.Membership)
		lib.AddMember(NewMember(sm.ID, sm.Name, membership))
	}
	return lib, nil
}

// DefaultSeed is the community library used by the console when no seed
// file is configured.
func DefaultSeed() Seed {
	return Seed{
		Name: "Community Library",
		Items: []SeedItem{
			{ID: "B004", Kind: string(KindBook), Title: "The White Tiger", ItemDetails: ItemDetails{Author: "Aravind Adiga", ISBN: "1234"}, PriorCheckouts: 12},
			{ID: "B005", Kind: string(KindBook), Title: "The God of Small Things", ItemDetails: ItemDetails{Author: "Arundhati Roy", ISBN: "5678"}},
			{ID: "B006", Kind: string(KindBook), Title: "Midnight's Children", ItemDetails: ItemDetails{Author: "Salman Rushdie", ISBN: "7868"}},
			{ID: "D001", Kind: string(KindDVD), Title: "Inception", ItemDetails: ItemDetails{Director: "Christopher Nolan", DurationMinutes: 148}},
			{ID: "M001", Kind: string(KindMagazine), Title: "National Geographic", ItemDetails: ItemDetails{Issue: "Vol 244 No 1", PublishDate: "2024-01"}},
		},
		Members: []SeedMember{
			{ID: "MEM001", Name: "Ahmed", Membership: string(MembershipStandard)},
			{ID: "MEM002", Name: "Mohsin", Membership: string(MembershipPremium)},
			{ID: "MEM003", Name: "Jhon", Membership: string(MembershipStandard)},
		},
	}
}
