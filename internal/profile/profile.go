// Package profile manages persisted printer configuration profiles
package profile

// Transport selects how encoded receipt data reaches the device
type Transport string

const (
	TransportUSB       Transport = "usb"
	TransportNetwork   Transport = "network"
	TransportBluetooth Transport = "bluetooth"
	TransportSerial    Transport = "serial"
	TransportFallback  Transport = "fallback"
)

// Dialect selects the printer command set wrapped around formatted lines
type Dialect string

const (
	DialectThermalESCPOS Dialect = "thermal_escpos"
	DialectStandardPCL   Dialect = "standard_pcl"
	DialectDotMatrix     Dialect = "dot_matrix"
)

// PaperWidth is a paper width class; each class maps to a character column count
type PaperWidth string

const (
	Paper58mm   PaperWidth = "58mm"
	Paper80mm   PaperWidth = "80mm"
	Paper112mm  PaperWidth = "112mm"
	PaperLetter PaperWidth = "letter"
)

// PriceAlign controls how the price column of a two-part line is placed
type PriceAlign string

const (
	PriceAlignRight PriceAlign = "right"
	PriceAlignLeft  PriceAlign = "left"
)

// CutType selects the paper cut issued after a thermal print
type CutType string

const (
	CutFull    CutType = "full"
	CutPartial CutType = "partial"
	CutNone    CutType = "none"
)

// Profile is one configured printer. It is read-only configuration from the
// engine's point of view; edits go through the Store.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`

	Transport Transport `json:"transport"`
	Dialect   Dialect   `json:"dialect"`

	// Transport parameters; only the fields for the selected transport are used.
	VID        uint16 `json:"vid,omitempty"`
	PID        uint16 `json:"pid,omitempty"`
	ModelMatch string `json:"model_match,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	BLEAddress string `json:"ble_address,omitempty"`
	Device     string `json:"device,omitempty"`
	BaudRate   int    `json:"baud_rate,omitempty"`

	Layout        Layout        `json:"layout"`
	Business      Business      `json:"business_info"`
	PrintSettings PrintSettings `json:"print_settings"`
}

// Layout describes how receipt content is laid out on paper
type Layout struct {
	PaperWidth     PaperWidth `json:"paper_width"`
	ItemNameWidth  int        `json:"item_name_width,omitempty"`
	PriceAlign     PriceAlign `json:"price_align,omitempty"`
	CurrencySymbol string     `json:"currency_symbol,omitempty"`
	FontScale      int        `json:"font_scale,omitempty"`
	LineSpacing    int        `json:"line_spacing,omitempty"`

	ShowLogo     bool `json:"show_logo"`
	ShowTaxID    bool `json:"show_tax_id"`
	ShowCashier  bool `json:"show_cashier"`
	ShowCustomer bool `json:"show_customer"`
	ShowLoyalty  bool `json:"show_loyalty"`
	ShowFooter   bool `json:"show_footer"`
}

// Business is the address block printed in the receipt header
type Business struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TaxID      string `json:"tax_id,omitempty"`
	LogoPath   string `json:"logo_path,omitempty"`
	FooterText string `json:"footer_text,omitempty"`
}

// PrintSettings are device control options applied by the command encoder
type PrintSettings struct {
	Density    int     `json:"density,omitempty"` // 1..8
	Speed      int     `json:"speed,omitempty"`   // 1..4
	Cut        CutType `json:"cut,omitempty"`
	OpenDrawer bool    `json:"open_drawer"`
	Buzzer     bool    `json:"buzzer"`
	Copies     int     `json:"copies,omitempty"`
}

// DefaultPort is the conventional raw-print port for network printers
const DefaultPort = 9100

// DefaultBaudRate is the bring-up rate most thermal serial printers ship with
const DefaultBaudRate = 9600
