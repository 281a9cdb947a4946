package inventory

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/catalog"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shared/valueobject"
)

// memStore is an in-memory backing store for service tests. Its
// transaction scope restores a snapshot when the callback fails, so
// all-or-nothing behaviour can be asserted without a database.
type memStore struct {
	products  map[uuid.UUID]*catalog.Product
	locations map[uuid.UUID]*inventory.StorageLocation
	stockIns  map[uuid.UUID]inventory.StockIn
	stockOuts map[uuid.UUID]inventory.StockOut
	balances  map[uuid.UUID]map[uuid.UUID]int64
	movements []inventory.Movement
	scans     map[string]inventory.ScanRecord
	versions  map[uuid.UUID]int
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[uuid.UUID]*catalog.Product),
		locations: make(map[uuid.UUID]*inventory.StorageLocation),
		stockIns:  make(map[uuid.UUID]inventory.StockIn),
		stockOuts: make(map[uuid.UUID]inventory.StockOut),
		balances:  make(map[uuid.UUID]map[uuid.UUID]int64),
		scans:     make(map[string]inventory.ScanRecord),
		versions:  make(map[uuid.UUID]int),
	}
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{
		products:  maps.Clone(s.products),
		locations: maps.Clone(s.locations),
		stockIns:  maps.Clone(s.stockIns),
		stockOuts: maps.Clone(s.stockOuts),
		balances:  make(map[uuid.UUID]map[uuid.UUID]int64, len(s.balances)),
		movements: slices.Clone(s.movements),
		scans:     maps.Clone(s.scans),
		versions:  maps.Clone(s.versions),
	}
	for k, v := range s.balances {
		cp.balances[k] = maps.Clone(v)
	}
	return cp
}

// seedProduct registers a product with 10 pieces per pack, 5 packs per box
func (s *memStore) seedProduct(name string, barcodes catalog.Barcodes, piecePrice int64) *catalog.Product {
	p, err := catalog.NewProduct(name, "", barcodes,
		valueobject.ConversionFactors{PiecesPerPack: 10, PacksPerBox: 5}, decimal.NewFromInt(piecePrice))
	if err != nil {
		panic(err)
	}
	p.ClearDomainEvents()
	s.products[p.ID] = p
	return p
}

func (s *memStore) seedLocation(warehouse string) *inventory.StorageLocation {
	l, err := inventory.NewStorageLocation(warehouse, "", "")
	if err != nil {
		panic(err)
	}
	s.locations[l.ID] = l
	return l
}

func (s *memStore) setBalance(productID, locationID uuid.UUID, pieces int64) {
	if s.balances[productID] == nil {
		s.balances[productID] = make(map[uuid.UUID]int64)
	}
	s.balances[productID][locationID] = pieces
}

func (s *memStore) total(productID uuid.UUID) int64 {
	var sum int64
	for _, v := range s.balances[productID] {
		sum += v
	}
	return sum
}

// repositories

type memProducts struct{ s *memStore }

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.s.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r memProducts) FindByBarcode(_ context.Context, code string) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.s.products {
		if _, ok := p.Barcodes.Match(code); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindByAnyBarcode(ctx context.Context, codes []string) ([]*catalog.Product, error) {
	seen := map[uuid.UUID]bool{}
	var out []*catalog.Product
	for _, c := range codes {
		found, _ := r.FindByBarcode(ctx, c)
		for _, p := range found {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindAll(context.Context, shared.Filter) ([]*catalog.Product, error) {
	return slices.Collect(maps.Values(r.s.products)), nil
}

func (r memProducts) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.s.products)), nil
}

func (r memProducts) Save(_ context.Context, p *catalog.Product) error {
	r.s.products[p.ID] = p
	return nil
}

type memLocations struct{ s *memStore }

func (r memLocations) FindByID(_ context.Context, id uuid.UUID) (*inventory.StorageLocation, error) {
	if l, ok := r.s.locations[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r memLocations) FindByPath(_ context.Context, warehouse, container, rack string) (*inventory.StorageLocation, error) {
	for _, l := range r.s.locations {
		if l.Warehouse == warehouse && l.Container == container && l.Rack == rack {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memLocations) FindAll(context.Context, shared.Filter) ([]*inventory.StorageLocation, error) {
	return slices.Collect(maps.Values(r.s.locations)), nil
}

func (r memLocations) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.s.locations)), nil
}

func (r memLocations) Save(_ context.Context, l *inventory.StorageLocation) error {
	r.s.locations[l.ID] = l
	return nil
}

// checkVersion mimics the optimistic update of the database repositories
func (s *memStore) checkVersion(id uuid.UUID, agg *shared.BaseAggregateRoot) error {
	stored, exists := s.versions[id]
	if exists && stored != agg.Version {
		return shared.ErrConcurrencyConflict
	}
	if exists {
		agg.Version++
	}
	s.versions[id] = agg.Version
	return nil
}

type memStockIns struct{ s *memStore }

func (r memStockIns) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockIn, error) {
	si, ok := r.s.stockIns[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	si.Items = slices.Clone(si.Items)
	si.ClearDomainEvents()
	return &si, nil
}

func (r memStockIns) FindAll(_ context.Context, _ shared.Filter, status inventory.StockInStatus) ([]*inventory.StockIn, error) {
	var out []*inventory.StockIn
	for _, si := range r.s.stockIns {
		if status == "" || si.Status == status {
			out = append(out, &si)
		}
	}
	return out, nil
}

func (r memStockIns) Count(ctx context.Context, f shared.Filter, status inventory.StockInStatus) (int64, error) {
	list, _ := r.FindAll(ctx, f, status)
	return int64(len(list)), nil
}

func (r memStockIns) Save(_ context.Context, si *inventory.StockIn) error {
	if err := r.s.checkVersion(si.ID, &si.BaseAggregateRoot); err != nil {
		return err
	}
	cp := *si
	cp.Items = slices.Clone(si.Items)
	r.s.stockIns[si.ID] = cp
	return nil
}

type memStockOuts struct{ s *memStore }

func (r memStockOuts) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockOut, error) {
	so, ok := r.s.stockOuts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	so.Items = slices.Clone(so.Items)
	so.ClearDomainEvents()
	return &so, nil
}

func (r memStockOuts) FindAll(_ context.Context, _ shared.Filter, status inventory.StockOutStatus) ([]*inventory.StockOut, error) {
	var out []*inventory.StockOut
	for _, so := range r.s.stockOuts {
		if status == "" || so.Status == status {
			out = append(out, &so)
		}
	}
	return out, nil
}

func (r memStockOuts) Count(ctx context.Context, f shared.Filter, status inventory.StockOutStatus) (int64, error) {
	list, _ := r.FindAll(ctx, f, status)
	return int64(len(list)), nil
}

func (r memStockOuts) Save(_ context.Context, so *inventory.StockOut) error {
	if err := r.s.checkVersion(so.ID, &so.BaseAggregateRoot); err != nil {
		return err
	}
	cp := *so
	cp.Items = slices.Clone(so.Items)
	r.s.stockOuts[so.ID] = cp
	return nil
}

type memLedger struct{ s *memStore }

func (l memLedger) GetAvailablePieces(ctx context.Context, productID uuid.UUID) (inventory.Availability, error) {
	balances, err := l.GetBalances(ctx, productID)
	if err != nil {
		return inventory.Availability{}, err
	}
	return inventory.Summarize(productID, balances), nil
}

func (l memLedger) GetBalances(_ context.Context, productID uuid.UUID) ([]inventory.StockBalance, error) {
	var out []inventory.StockBalance
	for loc, pieces := range l.s.balances[productID] {
		out = append(out, inventory.StockBalance{ProductID: productID, LocationID: loc, Pieces: pieces, UpdatedAt: time.Now()})
	}
	return out, nil
}

func (l memLedger) CommitDeduction(ctx context.Context, req inventory.DeductionRequest) (*inventory.DeductionResult, error) {
	balances, _ := l.GetBalances(ctx, req.ProductID)
	draws, err := inventory.PlanDeduction(req.ProductID, balances, req.Pieces, req.LocationID)
	if err != nil {
		return nil, err
	}
	result := &inventory.DeductionResult{PiecesDeducted: req.Pieces}
	for _, d := range draws {
		after := l.s.balances[req.ProductID][d.LocationID] - d.Pieces
		l.s.balances[req.ProductID][d.LocationID] = after
		m := inventory.NewMovement(req.ProductID, d.LocationID, inventory.DirectionOut, d.Pieces, after, req.Reference)
		l.s.movements = append(l.s.movements, m)
		result.Movements = append(result.Movements, m)
	}
	result.RemainingPieces = l.s.total(req.ProductID)
	return result, nil
}

func (l memLedger) CommitAddition(_ context.Context, req inventory.AdditionRequest) (*inventory.Movement, error) {
	if req.Pieces <= 0 {
		return nil, shared.ErrInvalidConversion
	}
	l.s.setBalance(req.ProductID, req.LocationID, l.s.balances[req.ProductID][req.LocationID]+req.Pieces)
	m := inventory.NewMovement(req.ProductID, req.LocationID, inventory.DirectionIn, req.Pieces,
		l.s.balances[req.ProductID][req.LocationID], req.Reference)
	l.s.movements = append(l.s.movements, m)
	return &m, nil
}

func (l memLedger) FindMovementsByReference(_ context.Context, ref inventory.Reference) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range l.s.movements {
		if m.ReferenceType == ref.Type && m.ReferenceID == ref.ID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memScans struct{ s *memStore }

func (r memScans) FindByScanID(_ context.Context, scanID string) (*inventory.ScanRecord, error) {
	rec, ok := r.s.scans[scanID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (r memScans) Create(_ context.Context, rec *inventory.ScanRecord) error {
	if _, ok := r.s.scans[rec.ScanID]; ok {
		return shared.ErrAlreadyExists
	}
	r.s.scans[rec.ScanID] = *rec
	return nil
}

// memScope restores the store when the callback fails
type memScope struct{ s *memStore }

func (m memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	before := m.s.snapshot()
	if err := fn(m); err != nil {
		*m.s = *before
		return err
	}
	return nil
}

func (m memScope) ProductRepo() catalog.ProductRepository { return memProducts{m.s} }
func (m memScope) StockInRepo() inventory.StockInRepository { return memStockIns{m.s} }
func (m memScope) StockOutRepo() inventory.StockOutRepository { return memStockOuts{m.s} }
func (m memScope) Ledger() inventory.StockLedger { return memLedger{m.s} }
func (m memScope) ScanRecordRepo() inventory.ScanRecordRepository { return memScans{m.s} }

// memClaims is an in-memory idempotency store
type memClaims struct {
	keys map[string]bool
}

func newMemClaims() *memClaims { return &memClaims{keys: map[string]bool{}} }

func (c *memClaims) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if c.keys[key] {
		return false, nil
	}
	c.keys[key] = true
	return true, nil
}

func (c *memClaims) IsProcessed(_ context.Context, key string) (bool, error) { return c.keys[key], nil }

func (c *memClaims) Release(_ context.Context, key string) error {
	delete(c.keys, key)
	return nil
}

func (c *memClaims) Close() error { return nil }

var (
	_ catalog.ProductRepository      = memProducts{}
	_ inventory.LocationRepository   = memLocations{}
	_ inventory.StockInRepository    = memStockIns{}
	_ inventory.StockOutRepository   = memStockOuts{}
	_ inventory.StockLedger          = memLedger{}
	_ inventory.ScanRecordRepository = memScans{}
	_ TransactionScope               = memScope{}
	_ shared.IdempotencyStore        = (*memClaims)(nil)
)
