package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyID is returned when trying to store a record with an empty ID.
var ErrEmptyID = errors.New("empty ID")

// ErrDuplicate is returned when a natural key (plate, national ID) is already taken.
var ErrDuplicate = errors.New("duplicate record")

// SaleFilter narrows ListSales. Zero values mean no filter.
type SaleFilter struct {
	Year     int
	Month    time.Month
	ClientID string
}

// Storage is the main interface for our dealership persistence layer.
// Lookups return ErrNotFound when nothing matches.
type Storage interface {
	FindClientByNationalID(ctx context.Context, nationalID string) (*Client, error)
	FindVehicleByPlate(ctx context.Context, plate string) (*Vehicle, error)
	SumVehicleExpenses(ctx context.Context, vehicleID string) (Money, error)

	CreateSale(ctx context.Context, sale *Sale) error
	ReadSale(ctx context.Context, id string) (*Sale, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error)

	// UpdateVehicleState moves the vehicle to "to" only if it currently is in
	// "from". It reports whether the row was changed.
	UpdateVehicleState(ctx context.Context, id string, from, to VehicleState) (bool, error)
	UpdateClientClassification(ctx context.Context, id string, c ClientClassification) (bool, error)

	CreateVehicle(ctx context.Context, v *Vehicle) error
	ListVehicles(ctx context.Context, state VehicleState) ([]*Vehicle, error)
	CreateVehicleExpense(ctx context.Context, e *VehicleExpense) error
	CreateClient(ctx context.Context, c *Client) error
	CreateOperatingExpense(ctx context.Context, e *OperatingExpense) error

	// Transaction runs fn against a storage bound to a single unit of work.
	// Everything written through it is discarded when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Storage) error) error
}

// LocalStorage provides an in-memory implementation of Storage.
type LocalStorage struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	vehicles     map[string]*Vehicle
	vehicleExps  map[string]*VehicleExpense
	clients      map[string]*Client
	sales        map[string]*Sale
	operatingExp map[string]*OperatingExpense
	salespeople  map[string]*Salesperson
}

// NewLocalStorage instantiates a new empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		vehicles:     map[string]*Vehicle{},
		vehicleExps:  map[string]*VehicleExpense{},
		clients:      map[string]*Client{},
		sales:        map[string]*Sale{},
		operatingExp: map[string]*OperatingExpense{},
		salespeople:  map[string]*Salesperson{},
	}
}

// AddSalesperson registers a user able to record sales.
func (l *LocalStorage) AddSalesperson(sp *Salesperson) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *sp
	l.salespeople[sp.ID] = &cp
}

// LookupSalesperson implements SalespersonDirectory.
func (l *LocalStorage) LookupSalesperson(_ context.Context, id string) (*Salesperson, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sp, ok := l.salespeople[id]
	if !ok {
		return nil, ErrSalespersonNotFound
	}
	cp := *sp
	return &cp, nil
}

func (l *LocalStorage) FindClientByNationalID(_ context.Context, nationalID string) (*Client, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.clients {
		if c.NationalID == nationalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (l *LocalStorage) FindVehicleByPlate(_ context.Context, plate string) (*Vehicle, error) {
	plate = NormalizePlate(plate)
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, v := range l.vehicles {
		if v.Plate == plate {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (l *LocalStorage) SumVehicleExpenses(_ context.Context, vehicleID string) (Money, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := Money{ARS: decimal.Zero, USD: decimal.Zero}
	for _, e := range l.vehicleExps {
		if e.VehicleID == vehicleID {
			total.ARS = total.ARS.Add(e.AmountARS)
			total.USD = total.USD.Add(e.AmountUSD)
		}
	}
	return total, nil
}

// createSale returns ErrEmptyID if the sale has an empty ID.
func (l *LocalStorage) createSale(sale *Sale) error {
	if sale.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *sale
	l.sales[sale.ID] = &cp
	return nil
}

// ReadSale retrieves a sale by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) ReadSale(_ context.Context, id string) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ListSales returns the sales matching filter, newest first.
func (l *LocalStorage) ListSales(_ context.Context, filter SaleFilter) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Sale, 0, len(l.sales))
	for _, s := range l.sales {
		if filter.ClientID != "" && s.ClientID != filter.ClientID {
			continue
		}
		if filter.Year != 0 && s.SaleDate.Year() != filter.Year {
			continue
		}
		if filter.Month != 0 && s.SaleDate.Month() != filter.Month {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (l *LocalStorage) updateVehicleState(id string, from, to VehicleState) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.vehicles[id]
	if !ok || v.State != from {
		return false, nil
	}
	v.State = to
	v.UpdatedAt = time.Now()
	return true, nil
}

func (l *LocalStorage) updateClientClassification(id string, c ClientClassification) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.clients[id]
	if !ok {
		return false, nil
	}
	cl.Classification = c
	cl.UpdatedAt = time.Now()
	return true, nil
}

func (l *LocalStorage) createVehicle(v *Vehicle) error {
	if v.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.vehicles {
		if existing.Plate == v.Plate {
			return ErrDuplicate
		}
	}
	cp := *v
	l.vehicles[v.ID] = &cp
	return nil
}

// ListVehicles returns vehicles in the given state, or all of them when state is empty.
func (l *LocalStorage) ListVehicles(_ context.Context, state VehicleState) ([]*Vehicle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Vehicle, 0, len(l.vehicles))
	for _, v := range l.vehicles {
		if state != "" && v.State != state {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (l *LocalStorage) createVehicleExpense(e *VehicleExpense) error {
	if e.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *e
	l.vehicleExps[e.ID] = &cp
	return nil
}

func (l *LocalStorage) createClient(c *Client) error {
	if c.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.clients {
		if existing.NationalID == c.NationalID {
			return ErrDuplicate
		}
	}
	cp := *c
	l.clients[c.ID] = &cp
	return nil
}

func (l *LocalStorage) createOperatingExpense(e *OperatingExpense) error {
	if e.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *e
	l.operatingExp[e.ID] = &cp
	return nil
}

// Transaction serializes units of work and restores the previous contents
// when fn fails. Writes issued outside fn wait until the unit of work ends,
// so a rollback never discards them.
func (l *LocalStorage) Transaction(_ context.Context, fn func(tx Storage) error) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()

	snap := l.snapshot()
	if err := fn(&localTx{l}); err != nil {
		l.restore(snap)
		return err
	}
	return nil
}

// Writes outside a transaction take txMu so they cannot interleave with one.

func (l *LocalStorage) CreateSale(_ context.Context, sale *Sale) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.createSale(sale)
}

func (l *LocalStorage) UpdateVehicleState(_ context.Context, id string, from, to VehicleState) (bool, error) {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.updateVehicleState(id, from, to)
}

func (l *LocalStorage) UpdateClientClassification(_ context.Context, id string, c ClientClassification) (bool, error) {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.updateClientClassification(id, c)
}

func (l *LocalStorage) CreateVehicle(_ context.Context, v *Vehicle) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.createVehicle(v)
}

func (l *LocalStorage) CreateVehicleExpense(_ context.Context, e *VehicleExpense) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.createVehicleExpense(e)
}

func (l *LocalStorage) CreateClient(_ context.Context, c *Client) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.createClient(c)
}

func (l *LocalStorage) CreateOperatingExpense(_ context.Context, e *OperatingExpense) error {
	l.txMu.Lock()
	defer l.txMu.Unlock()
	return l.createOperatingExpense(e)
}

// localTx is the view handed to a transaction body. txMu is already held.
type localTx struct {
	*LocalStorage
}

func (t *localTx) CreateSale(_ context.Context, sale *Sale) error { return t.createSale(sale) }

func (t *localTx) UpdateVehicleState(_ context.Context, id string, from, to VehicleState) (bool, error) {
	return t.updateVehicleState(id, from, to)
}

func (t *localTx) UpdateClientClassification(_ context.Context, id string, c ClientClassification) (bool, error) {
	return t.updateClientClassification(id, c)
}

func (t *localTx) CreateVehicle(_ context.Context, v *Vehicle) error { return t.createVehicle(v) }

func (t *localTx) CreateVehicleExpense(_ context.Context, e *VehicleExpense) error {
	return t.createVehicleExpense(e)
}

func (t *localTx) CreateClient(_ context.Context, c *Client) error { return t.createClient(c) }

func (t *localTx) CreateOperatingExpense(_ context.Context, e *OperatingExpense) error {
	return t.createOperatingExpense(e)
}

// Transaction on a transaction view joins the enclosing unit of work.
func (t *localTx) Transaction(_ context.Context, fn func(tx Storage) error) error {
	return fn(t)
}

type localSnapshot struct {
	vehicles map[string]Vehicle
	clients  map[string]Client
	sales    map[string]Sale
	expenses map[string]VehicleExpense
	opex     map[string]OperatingExpense
}

func (l *LocalStorage) snapshot() localSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := localSnapshot{
		vehicles: make(map[string]Vehicle, len(l.vehicles)),
		clients:  make(map[string]Client, len(l.clients)),
		sales:    make(map[string]Sale, len(l.sales)),
		expenses: make(map[string]VehicleExpense, len(l.vehicleExps)),
		opex:     make(map[string]OperatingExpense, len(l.operatingExp)),
	}
	for k, v := range l.vehicles {
		s.vehicles[k] = *v
	}
	for k, v := range l.clients {
		s.clients[k] = *v
	}
	for k, v := range l.sales {
		s.sales[k] = *v
	}
	for k, v := range l.vehicleExps {
		s.expenses[k] = *v
	}
	for k, v := range l.operatingExp {
		s.opex[k] = *v
	}
	return s
}

func (l *LocalStorage) restore(s localSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vehicles = make(map[string]*Vehicle, len(s.vehicles))
	for k, v := range s.vehicles {
		v := v
		l.vehicles[k] = &v
	}
	l.clients = make(map[string]*Client, len(s.clients))
	for k, v := range s.clients {
		v := v
		l.clients[k] = &v
	}
	l.sales = make(map[string]*Sale, len(s.sales))
	for k, v := range s.sales {
		v := v
		l.sales[k] = &v
	}
	l.vehicleExps = make(map[string]*VehicleExpense, len(s.expenses))
	for k, v := range s.expenses {
		v := v
		l.vehicleExps[k] = &v
	}
	l.operatingExp = make(map[string]*OperatingExpense, len(s.opex))
	for k, v := range s.opex {
		v := v
		l.operatingExp[k] = &v
	}
}
