package services

import (
	"strings"
	"sync"

	"tradenexus/internal/core/domain"
)

// Collection names carried by DataEvent
const (
	CollectionShipments    = "shipments"
	CollectionCompanies    = "companies"
	CollectionHsCodes      = "hs_codes"
	CollectionCountryStats = "country_stats"
	CollectionAll          = "all"
)

// DataOp is the kind of mutation a DataEvent reports
type DataOp string

const (
	DataAdded   DataOp = "added"
	DataUpdated DataOp = "updated"
	DataDeleted DataOp = "deleted"
	DataReset   DataOp = "reset"
)

// DataEvent is delivered to DataStore subscribers after each mutation
type DataEvent struct {
	Collection string `json:"collection"`
	Op         DataOp `json:"op"`
	ID         string `json:"id,omitempty"`
}

// ShipmentFilter narrows SearchShipments. Empty fields match everything.
type ShipmentFilter struct {
	Query         string // substring of id, product, importer, exporter or port
	OriginCountry string
	DestCountry   string
	HsCode        string // code prefix
}

// CompanyFilter narrows SearchCompanies. Empty fields match everything.
type CompanyFilter struct {
	Query        string // substring of id, name or industry
	Country      string
	Industry     string
	Tier         domain.Tier
	VerifiedOnly bool
}

// collection is an ordered, most-recent-first list of records
type collection[T any] struct {
	items []T
	id    func(T) string
	clone func(T) T // deep-copies slice fields; nil when T has none
}

func (c *collection[T]) copyOf(item T) T {
	if c.clone == nil {
		return item
	}
	return c.clone(item)
}

func (c *collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.copyOf(item)
	}
	return out
}

func (c *collection[T]) prepend(item T) {
	items := make([]T, 0, len(c.items)+1)
	items = append(items, c.copyOf(item))
	c.items = append(items, c.items...)
}

func (c *collection[T]) replace(item T) bool {
	key := c.id(item)
	found := false
	for i := range c.items {
		if c.id(c.items[i]) == key {
			c.items[i] = c.copyOf(item)
			found = true
		}
	}
	return found
}

func (c *collection[T]) remove(id string) bool {
	kept := c.items[:0:0]
	for _, item := range c.items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.items)
	if removed {
		c.items = kept
	}
	return removed
}

func (c *collection[T]) find(id string) (T, bool) {
	for _, item := range c.items {
		if c.id(item) == id {
			return c.copyOf(item), true
		}
	}
	var zero T
	return zero, false
}

// DataStore holds the trade records shared by every session of the process
type DataStore struct {
	mu           sync.RWMutex
	seeder       Seeder
	shipments    collection[domain.Shipment]
	companies    collection[domain.Company]
	hsCodes      []domain.HsCode
	hsTree       []domain.HsNode
	countryStats []domain.CountryStats
	events       listeners[DataEvent]
}

// NewDataStore creates a store populated from seeder
func NewDataStore(seeder Seeder) *DataStore {
	s := &DataStore{
		seeder:    seeder,
		shipments: collection[domain.Shipment]{id: func(r domain.Shipment) string { return r.ID }},
		companies: collection[domain.Company]{id: func(r domain.Company) string { return r.ID }, clone: cloneCompany},
	}
	s.load()
	return s
}

func cloneCompany(c domain.Company) domain.Company {
	c.TopProducts = append([]string(nil), c.TopProducts...)
	return c
}

func (s *DataStore) load() {
	s.shipments.items = s.seeder.Shipments()
	s.companies.items = s.seeder.Companies()
	s.hsCodes = s.seeder.HsCodes()
	s.hsTree = s.seeder.HsTree()
	s.countryStats = s.seeder.CountryStats()
}

// Subscribe registers fn for data events and returns its unsubscribe func
func (s *DataStore) Subscribe(fn func(DataEvent)) func() {
	return s.events.add(fn)
}

// Shipments returns a copy of all shipments
func (s *DataStore) Shipments() []domain.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shipments.snapshot()
}

// Shipment returns the shipment with the given id
func (s *DataStore) Shipment(id string) (domain.Shipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shipments.find(id)
}

// AddShipment puts shipment at the front of the collection
func (s *DataStore) AddShipment(shipment domain.Shipment) {
	s.mu.Lock()
	s.shipments.prepend(shipment)
	s.mu.Unlock()

	s.events.emit(DataEvent{Collection: CollectionShipments, Op: DataAdded, ID: shipment.ID})
}

// UpdateShipment replaces the shipment with the same id. It reports false
// and changes nothing when there is none.
func (s *DataStore) UpdateShipment(shipment domain.Shipment) bool {
	s.mu.Lock()
	ok := s.shipments.replace(shipment)
	s.mu.Unlock()

	if ok {
		s.events.emit(DataEvent{Collection: CollectionShipments, Op: DataUpdated, ID: shipment.ID})
	}
	return ok
}

// DeleteShipment removes the shipment with the given id
func (s *DataStore) DeleteShipment(id string) bool {
	s.mu.Lock()
	ok := s.shipments.remove(id)
	s.mu.Unlock()

	if ok {
		s.events.emit(DataEvent{Collection: CollectionShipments, Op: DataDeleted, ID: id})
	}
	return ok
}

// SearchShipments returns the shipments matching filter, in collection order
func (s *DataStore) SearchShipments(filter ShipmentFilter) []domain.Shipment {
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Shipment, 0)
	for _, r := range s.shipments.items {
		if filter.OriginCountry != "" && !strings.EqualFold(r.OriginCountry, filter.OriginCountry) {
			continue
		}
		if filter.DestCountry != "" && !strings.EqualFold(r.DestCountry, filter.DestCountry) {
			continue
		}
		if filter.HsCode != "" && !strings.HasPrefix(r.HsCode, filter.HsCode) {
			continue
		}
		if q != "" && !containsAny(q, r.ID, r.ProductDesc, r.Importer, r.Exporter, r.Port) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Companies returns a copy of all companies
func (s *DataStore) Companies() []domain.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companies.snapshot()
}

// Company returns the company with the given id
func (s *DataStore) Company(id string) (domain.Company, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companies.find(id)
}

// AddCompany puts company at the front of the collection
func (s *DataStore) AddCompany(company domain.Company) {
	s.mu.Lock()
	s.companies.prepend(company)
	s.mu.Unlock()

	s.events.emit(DataEvent{Collection: CollectionCompanies, Op: DataAdded, ID: company.ID})
}

// UpdateCompany replaces the company with the same id. It reports false
// and changes nothing when there is none.
func (s *DataStore) UpdateCompany(company domain.Company) bool {
	s.mu.Lock()
	ok := s.companies.replace(company)
	s.mu.Unlock()

	if ok {
		s.events.emit(DataEvent{Collection: CollectionCompanies, Op: DataUpdated, ID: company.ID})
	}
	return ok
}

// DeleteCompany removes the company with the given id. Shipments that
// name the company are left alone.
func (s *DataStore) DeleteCompany(id string) bool {
	s.mu.Lock()
	ok := s.companies.remove(id)
	s.mu.Unlock()

	if ok {
		s.events.emit(DataEvent{Collection: CollectionCompanies, Op: DataDeleted, ID: id})
	}
	return ok
}

// SearchCompanies returns the companies matching filter, in collection order
func (s *DataStore) SearchCompanies(filter CompanyFilter) []domain.Company {
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Company, 0)
	for _, r := range s.companies.items {
		if filter.Country != "" && !strings.EqualFold(r.Country, filter.Country) {
			continue
		}
		if filter.Industry != "" && !strings.EqualFold(r.Industry, filter.Industry) {
			continue
		}
		if filter.Tier != "" && r.Tier != filter.Tier {
			continue
		}
		if filter.VerifiedOnly && !r.IsVerified {
			continue
		}
		if q != "" && !containsAny(q, r.ID, r.Name, r.Industry) {
			continue
		}
		out = append(out, s.companies.copyOf(r))
	}
	return out
}

// HsCodes returns a copy of the flat duty-rate table
func (s *DataStore) HsCodes() []domain.HsCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HsCode(nil), s.hsCodes...)
}

// HsTree returns a deep copy of the classification tree
func (s *DataStore) HsTree() []domain.HsNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HsNode, len(s.hsTree))
	for i, n := range s.hsTree {
		out[i] = n.Clone()
	}
	return out
}

// FindHsNode looks up a node of the tree by code at any depth
func (s *DataStore) FindHsNode(code string) (domain.HsNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n := findNode(s.hsTree, code); n != nil {
		return n.Clone(), true
	}
	return domain.HsNode{}, false
}

func findNode(nodes []domain.HsNode, code string) *domain.HsNode {
	for i := range nodes {
		if nodes[i].Code == code {
			return &nodes[i]
		}
		if n := findNode(nodes[i].Children, code); n != nil {
			return n
		}
	}
	return nil
}

// CountryStats returns a copy of the country risk table
func (s *DataStore) CountryStats() []domain.CountryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CountryStats(nil), s.countryStats...)
}

// Reset replaces every collection with freshly generated data
func (s *DataStore) Reset() {
	s.mu.Lock()
	s.load()
	s.mu.Unlock()

	s.events.emit(DataEvent{Collection: CollectionAll, Op: DataReset})
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
