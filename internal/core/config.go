package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gotoplanb/kzrk/internal/game"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"os"
	"strings"
)

type catalogFile struct {
	Airports   []game.Airport   `json:"airports"`
	CargoTypes []game.CargoType `json:"cargo_types"`
}

// LoadCatalog reads the airport and cargo catalog rooms are created from. An
// empty path selects the built-in catalog.
func LoadCatalog(path string) (*game.Catalog, error) {
	if path == "" {
		return game.DefaultCatalog(), nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(bytes, &file); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", path, err)
	}

	catalog, err := file.build()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("airports", len(catalog.Airports)).
		Int("cargo_types", len(catalog.CargoTypes)).
		Msg("Catalog loaded")
	return catalog, nil
}

func (f catalogFile) build() (*game.Catalog, error) {
	if len(f.Airports) == 0 {
		return nil, errors.New("no airports")
	}
	if len(f.CargoTypes) == 0 {
		return nil, errors.New("no cargo types")
	}

	errs := iter.Map(f.Airports, func(a *game.Airport) error {
		a.ID = strings.ToUpper(strings.TrimSpace(a.ID))
		switch {
		case a.ID == "":
			return errors.New("airport without id")
		case a.Latitude < -90 || a.Latitude > 90 || a.Longitude < -180 || a.Longitude > 180:
			return fmt.Errorf("airport %s: coordinates out of range", a.ID)
		case a.BaseFuelPrice <= 0:
			return fmt.Errorf("airport %s: base fuel price must be positive", a.ID)
		}
		return nil
	})
	errs = append(errs, iter.Map(f.CargoTypes, func(c *game.CargoType) error {
		c.ID = strings.ToLower(strings.TrimSpace(c.ID))
		switch {
		case c.ID == "":
			return errors.New("cargo type without id")
		case c.BasePrice <= 0:
			return fmt.Errorf("cargo %s: base price must be positive", c.ID)
		case c.WeightPerUnit <= 0:
			return fmt.Errorf("cargo %s: weight per unit must be positive", c.ID)
		}
		return nil
	})...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	catalog := &game.Catalog{
		Airports:   make(map[string]game.Airport, len(f.Airports)),
		CargoTypes: make(map[string]game.CargoType, len(f.CargoTypes)),
	}
	for _, a := range f.Airports {
		if _, dup := catalog.Airports[a.ID]; dup {
			return nil, fmt.Errorf("duplicate airport %s", a.ID)
		}
		catalog.Airports[a.ID] = a
	}
	for _, c := range f.CargoTypes {
		if _, dup := catalog.CargoTypes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate cargo type %s", c.ID)
		}
		catalog.CargoTypes[c.ID] = c
	}
	return catalog, nil
}
