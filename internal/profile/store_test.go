package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func networkProfile(name string) Profile {
	return Profile{
		Name:      name,
		Transport: TransportNetwork,
		Dialect:   DialectThermalESCPOS,
		Host:      "192.168.1.50",
	}
}

func TestCreate_AssignsIDAndDefaults(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Create(networkProfile("Front Counter"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if p.ID == "" {
		t.Error("Expected non-empty profile ID")
	}
	if p.Port != DefaultPort {
		t.Errorf("Expected default port %d, got %d", DefaultPort, p.Port)
	}
	if p.Layout.PaperWidth != Paper80mm {
		t.Errorf("Expected default paper width 80mm, got %s", p.Layout.PaperWidth)
	}
	if !p.Default {
		t.Error("Expected first profile to become the default")
	}
}

func TestCreate_RequiresName(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Create(Profile{Transport: TransportFallback}); err == nil {
		t.Error("Expected error for missing name")
	}
}

func TestSetDefault_SingleDefaultInvariant(t *testing.T) {
	s := newTestStore(t)

	first, _ := s.Create(networkProfile("Counter 1"))
	second, _ := s.Create(networkProfile("Counter 2"))

	if err := s.SetDefault(second.ID); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	defaults := 0
	for _, p := range s.All() {
		if p.Default {
			defaults++
			if p.ID != second.ID {
				t.Errorf("Expected %s to be default, got %s", second.ID, p.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("Expected exactly one default profile, got %d", defaults)
	}

	got, err := s.DefaultProfile()
	if err != nil {
		t.Fatalf("DefaultProfile failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("Expected default %s, got %s", second.ID, got.ID)
	}
	_ = first
}

func TestRemove_ReassignsDefault(t *testing.T) {
	s := newTestStore(t)

	first, _ := s.Create(networkProfile("Counter 1"))
	second, _ := s.Create(networkProfile("Counter 2"))

	if err := s.Remove(first.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	got, err := s.DefaultProfile()
	if err != nil {
		t.Fatalf("Expected a default after removal: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("Expected remaining profile to become default, got %s", got.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get("missing"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPersistence_RoundTripsNestedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	p := Profile{
		Name:      "Kitchen",
		Transport: TransportSerial,
		Dialect:   DialectDotMatrix,
		Device:    "/dev/ttyUSB0",
		BaudRate:  19200,
		Layout: Layout{
			PaperWidth:     Paper58mm,
			ItemNameWidth:  18,
			PriceAlign:     PriceAlignLeft,
			CurrencySymbol: "₦",
			ShowCashier:    true,
			ShowLoyalty:    true,
		},
		Business: Business{
			Name:       "Sunrise Mart",
			Address:    "14 Allen Avenue",
			City:       "Ikeja",
			Phone:      "+234 800 000 0000",
			TaxID:      "TIN-992817",
			FooterText: "Thank you for shopping with us",
		},
		PrintSettings: PrintSettings{
			Density:    6,
			Speed:      2,
			Cut:        CutPartial,
			OpenDrawer: true,
			Buzzer:     true,
			Copies:     2,
		},
	}

	created, err := s1.Create(p)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Reload from disk, simulating a restart
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to reload store: %v", err)
	}

	got, err := s2.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}

	if got.Layout.CurrencySymbol != "₦" {
		t.Errorf("Expected currency symbol to persist, got '%s'", got.Layout.CurrencySymbol)
	}
	if got.Layout.PriceAlign != PriceAlignLeft {
		t.Errorf("Expected price alignment to persist, got '%s'", got.Layout.PriceAlign)
	}
	if got.Business.TaxID != "TIN-992817" {
		t.Errorf("Expected business tax ID to persist, got '%s'", got.Business.TaxID)
	}
	if got.PrintSettings.Cut != CutPartial || !got.PrintSettings.OpenDrawer || got.PrintSettings.Copies != 2 {
		t.Errorf("Expected print settings to persist, got %+v", got.PrintSettings)
	}
	if got.BaudRate != 19200 {
		t.Errorf("Expected baud rate 19200, got %d", got.BaudRate)
	}
}

func TestCreate_SaveFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	first, err := s.Create(networkProfile("Counter 1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Replace the store file with a directory so the next save fails
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove store file: %v", err)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("Failed to block store path: %v", err)
	}

	next := networkProfile("Counter 2")
	next.Default = true
	if _, err := s.Create(next); err == nil {
		t.Fatal("Expected Create to fail when the save fails")
	}

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("Expected rolled-back store to hold 1 profile, got %d", len(all))
	}
	got, err := s.DefaultProfile()
	if err != nil {
		t.Fatalf("Expected default to survive rollback: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Expected %s to stay default, got %s", first.ID, got.ID)
	}
}

func TestUpdate_ChangesStoredProfile(t *testing.T) {
	s := newTestStore(t)

	created, _ := s.Create(networkProfile("Counter"))
	created.Host = "10.0.0.20"
	created.Name = "Back Office"

	if err := s.Update(*created); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.Get(created.ID)
	if got.Host != "10.0.0.20" || got.Name != "Back Office" {
		t.Errorf("Expected updated fields, got %+v", got)
	}
}
