package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no profile matches the requested ID
var ErrNotFound = errors.New("profile not found")

// Store holds the configured printer profiles, persisted as a JSON array in a
// single file. Every mutation is written back synchronously; the file is read
// once at construction.
type Store struct {
	filePath string
	profiles []*Profile
	mu       sync.RWMutex
}

// NewStore loads (or lazily creates) the profile file at filePath
func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load profile store: %w", err)
		}
	}

	return s, nil
}

// Create stores a new profile, assigning it an ID. The first profile created
// becomes the default automatically.
func (s *Store) Create(p Profile) (*Profile, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("profile name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New().String()
	applyDefaults(&p)

	var prevDefault *Profile
	if len(s.profiles) == 0 {
		p.Default = true
	} else if p.Default {
		for _, existing := range s.profiles {
			if existing.Default {
				prevDefault = existing
				break
			}
		}
		s.clearDefaultLocked()
	}

	stored := p
	s.profiles = append(s.profiles, &stored)

	if err := s.save(); err != nil {
		// Keep memory consistent with disk
		s.profiles = s.profiles[:len(s.profiles)-1]
		if prevDefault != nil {
			prevDefault.Default = true
		}
		return nil, err
	}

	result := stored
	return &result, nil
}

// Update replaces the stored profile with the same ID
func (s *Store) Update(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.profiles {
		if existing.ID == p.ID {
			applyDefaults(&p)
			if p.Default && !existing.Default {
				s.clearDefaultLocked()
			}
			stored := p
			s.profiles[i] = &stored
			return s.save()
		}
	}

	return ErrNotFound
}

// Remove deletes a profile. If the default is removed and others remain, the
// first remaining profile becomes the default.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.profiles {
		if existing.ID == id {
			wasDefault := existing.Default
			s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
			if wasDefault && len(s.profiles) > 0 {
				s.profiles[0].Default = true
			}
			return s.save()
		}
	}

	return ErrNotFound
}

// Get returns a copy of the profile with the given ID
func (s *Store) Get(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}

	return nil, ErrNotFound
}

// All returns copies of every stored profile in insertion order
func (s *Store) All() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		copied := *p
		result = append(result, &copied)
	}
	return result
}

// SetDefault flags one profile as the workstation default, clearing the flag
// on every other profile. At most one default exists at any time.
func (s *Store) SetDefault(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *Profile
	for _, p := range s.profiles {
		if p.ID == id {
			target = p
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}

	s.clearDefaultLocked()
	target.Default = true

	return s.save()
}

// DefaultProfile returns the profile flagged as default, or ErrNotFound when
// none is configured.
func (s *Store) DefaultProfile() (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Default {
			copied := *p
			return &copied, nil
		}
	}

	return nil, ErrNotFound
}

func (s *Store) clearDefaultLocked() {
	for _, p := range s.profiles {
		p.Default = false
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.profiles)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

func applyDefaults(p *Profile) {
	if p.Transport == TransportNetwork && p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.Transport == TransportSerial && p.BaudRate == 0 {
		p.BaudRate = DefaultBaudRate
	}
	if p.Layout.PaperWidth == "" {
		p.Layout.PaperWidth = Paper80mm
	}
	if p.Layout.PriceAlign == "" {
		p.Layout.PriceAlign = PriceAlignRight
	}
	if p.PrintSettings.Cut == "" {
		p.PrintSettings.Cut = CutFull
	}
	if p.PrintSettings.Copies == 0 {
		p.PrintSettings.Copies = 1
	}
}
