package core

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"axis.io/contentops/internal/utils"
)

func newUUID() string {
	return uuid.NewString()
}

// BrandLookup is the read-only view of the registry other containers use to
// resolve brand back-references.
type BrandLookup interface {
	Brand(id string) (Brand, bool)
}

type NewBrand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url"`
}

type BrandUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	WebsiteURL  *string `json:"website_url,omitempty"`
}

type brandsSnapshot struct {
	Brands        []Brand `json:"brands"`
	ActiveBrandID string  `json:"active_brand_id"`
}

// BrandRegistry owns the brand records and the process-wide active brand.
type BrandRegistry struct {
	*storeBase

	mu            sync.Mutex
	brands        []Brand
	activeBrandID string
}

func NewBrandRegistry(opts Options) *BrandRegistry {
	return &BrandRegistry{storeBase: newStoreBase("brands", opts)}
}

func (r *BrandRegistry) Load() error {
	var snap brandsSnapshot
	found, err := r.load(&snap)
	if err != nil || !found {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brands = snap.Brands
	r.activeBrandID = snap.ActiveBrandID
	if _, ok := r.indexLocked(r.activeBrandID); !ok {
		r.activeBrandID = ""
	}
	r.logger.Info().Int("brands", len(r.brands)).Msg("Loaded brand registry")
	return nil
}

func (r *BrandRegistry) persistLocked() {
	r.save(brandsSnapshot{Brands: r.brands, ActiveBrandID: r.activeBrandID})
}

func (r *BrandRegistry) indexLocked(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, b := range r.brands {
		if b.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Brands returns every brand in creation order.
func (r *BrandRegistry) Brands() []Brand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Brand(nil), r.brands...)
}

func (r *BrandRegistry) Brand(id string) (Brand, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.indexLocked(id)
	if !ok {
		return Brand{}, false
	}
	return r.brands[i], true
}

// ActiveBrandID returns "" when no brand is active.
func (r *BrandRegistry) ActiveBrandID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeBrandID
}

// AddBrand creates a brand and makes it active. An empty name is rejected.
func (r *BrandRegistry) AddBrand(in NewBrand) (Brand, bool) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Brand{}, false
	}
	brand := Brand{
		ID:          r.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		WebsiteURL:  strings.TrimSpace(in.WebsiteURL),
		Initials:    utils.Initials(name),
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.brands = append(append([]Brand(nil), r.brands...), brand)
	r.activeBrandID = brand.ID
	r.persistLocked()
	r.logger.Info().Str("brand_id", brand.ID).Str("name", brand.Name).Msg("Brand created")
	return brand, true
}

// importBrand inserts or replaces a brand record as-is. Used by seeding.
func (r *BrandRegistry) importBrand(b Brand) {
	if b.Initials == "" {
		b.Initials = utils.Initials(b.Name)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := append([]Brand(nil), r.brands...)
	if i, ok := r.indexLocked(b.ID); ok {
		next[i] = b
	} else {
		next = append(next, b)
	}
	r.brands = next
	r.persistLocked()
}

// UpdateBrand merges the given fields. Initials are recomputed only when the
// name is part of the update; a blank name rejects the whole update.
func (r *BrandRegistry) UpdateBrand(id string, upd BrandUpdate) (Brand, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.indexLocked(id)
	if !ok {
		return Brand{}, false
	}
	b := r.brands[i]
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Brand{}, false
		}
		b.Name = name
		b.Initials = utils.Initials(name)
	}
	if upd.Description != nil {
		b.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.WebsiteURL != nil {
		b.WebsiteURL = strings.TrimSpace(*upd.WebsiteURL)
	}

	next := append([]Brand(nil), r.brands...)
	next[i] = b
	r.brands = next
	r.persistLocked()
	return b, true
}

// DeleteBrand removes the brand. If it was active, no brand is active
// afterwards.
func (r *BrandRegistry) DeleteBrand(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.indexLocked(id)
	if !ok {
		return false
	}
	next := make([]Brand, 0, len(r.brands)-1)
	next = append(next, r.brands[:i]...)
	next = append(next, r.brands[i+1:]...)
	r.brands = next
	if r.activeBrandID == id {
		r.activeBrandID = ""
	}
	r.persistLocked()
	r.logger.Info().Str("brand_id", id).Msg("Brand deleted")
	return true
}

// SetActiveBrand selects a brand; "" clears the selection. Unknown ids are
// rejected.
func (r *BrandRegistry) SetActiveBrand(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if _, ok := r.indexLocked(id); !ok {
			return false
		}
	}
	r.activeBrandID = id
	r.persistLocked()
	return true
}
