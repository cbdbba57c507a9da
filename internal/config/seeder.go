package config

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"tradenexus/internal/core/domain"
)

// Seeder generates the mock trade data that stands in for a backend.
// Every call draws new random values unless SeedConfig.RandomSeed pins them.
type Seeder struct {
	cfg SeedConfig
	now func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(cfg SeedConfig) *Seeder {
	return &Seeder{cfg: cfg, now: time.Now}
}

func (s *Seeder) rng() *rand.Rand {
	if s.cfg.RandomSeed != 0 {
		return rand.New(rand.NewPCG(s.cfg.RandomSeed, s.cfg.RandomSeed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(uint64(s.now().UnixNano()), rand.Uint64()))
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

type productLine struct {
	desc      string
	hsCode    string
	unit      string
	unitPrice float64
}

type tradeLane struct {
	origin string
	dest   string
	port   string
}

var (
	shipmentProducts = []productLine{
		{"Cotton T-Shirts", "6109.10", "Pcs", 2.5},
		{"Roasted Coffee Beans", "0901.21", "Kg", 6.8},
		{"Green Coffee, Arabica", "0901.11", "Kg", 4.2},
		{"Green Tea, Packed", "0902.10", "Kg", 9.5},
		{"Smartphones", "8517.13", "Pcs", 310},
		{"Microcontrollers", "8542.31", "Pcs", 1.9},
	}
	shipmentImporters = []string{"Global Retail Inc", "Pacific Distribution LLC", "EuroMart GmbH", "Northwind Imports", "Harbor Supply Co"}
	shipmentExporters = []string{"Textile World Ltd", "Saigon Garments JSC", "Shenzhen Electronics Co", "Minas Coffee Exporters", "Bavaria Components AG"}
	shipmentLanes     = []tradeLane{
		{"Vietnam", "USA", "Los Angeles"},
		{"China", "USA", "Long Beach"},
		{"China", "Netherlands", "Rotterdam"},
		{"Brazil", "Germany", "Hamburg"},
		{"India", "UK", "Felixstowe"},
		{"Japan", "USA", "Seattle"},
		{"Vietnam", "Germany", "Hamburg"},
	}

	companyIndustries = []string{"Electronics", "Agriculture", "Textiles", "Automotive", "Energy", "Chemicals"}
	companyCountries  = []string{"USA", "China", "Germany", "Japan", "Vietnam", "India"}
	companySuffixes   = []string{"Corp", "Ltd", "Inc", "GmbH"}
)

// Shipments generates cfg.Shipments records with ids SHP-1000, SHP-1001, ...
func (s *Seeder) Shipments() []domain.Shipment {
	r := s.rng()
	today := s.now()

	shipments := make([]domain.Shipment, s.cfg.Shipments)
	for i := range shipments {
		product := pick(r, shipmentProducts)
		lane := pick(r, shipmentLanes)
		quantity := 500 + r.IntN(9500)
		value := float64(quantity) * product.unitPrice * (0.8 + 0.4*r.Float64())

		shipments[i] = domain.Shipment{
			ID:            fmt.Sprintf("SHP-%d", 1000+i),
			Date:          today.AddDate(0, 0, -r.IntN(180)).Format("2006-01-02"),
			ProductDesc:   product.desc,
			HsCode:        product.hsCode,
			Importer:      pick(r, shipmentImporters),
			Exporter:      pick(r, shipmentExporters),
			OriginCountry: lane.origin,
			DestCountry:   lane.dest,
			Quantity:      quantity,
			Unit:          product.unit,
			ValueUSD:      math.Round(value),
			Port:          lane.port,
		}
	}
	return shipments
}

// Companies generates cfg.Companies records with ids COMP-100, COMP-101, ...
func (s *Seeder) Companies() []domain.Company {
	r := s.rng()

	companies := make([]domain.Company, s.cfg.Companies)
	for i := range companies {
		companies[i] = domain.Company{
			ID:            fmt.Sprintf("COMP-%d", 100+i),
			Name:          fmt.Sprintf("Global Partner %d %s", i+1, pick(r, companySuffixes)),
			Country:       pick(r, companyCountries),
			Industry:      pick(r, companyIndustries),
			Tier:          randomTier(r),
			IsVerified:    r.Float64() > 0.3,
			TradeVolume:   fmt.Sprintf("$%.1fM", r.Float64()*100+1),
			EmployeeCount: "50-200",
			FoundedYear:   2005,
			Website:       "www.example.com",
			Description:   "Premier importer of goods.",
			TopProducts:   []string{"Widgets", "Gadgets"},
			RiskScore:     r.IntN(100),
			ContactPerson: "Director of Purchasing",
			ContactEmail:  "purchasing@example.com",
			ContactPhone:  "+1 555-0123",
		}
	}
	return companies
}

// randomTier gives roughly 20% Tier 1, 40% Tier 2, 40% Tier 3
func randomTier(r *rand.Rand) domain.Tier {
	if r.Float64() > 0.8 {
		return domain.Tier1
	}
	if r.Float64() > 0.5 {
		return domain.Tier2
	}
	return domain.Tier3
}
