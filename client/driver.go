package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"

	"github.com/challenai/hbkit"
	"github.com/challenai/hbkit/thrift/hbase"
)

func init() {
	hbkit.Register("thrift", &Driver{})
}

// gateway is the part of the Thrift2 service the driver calls.
type gateway interface {
	TableExists(ctx context.Context, tableName *hbase.TTableName) (bool, error)
	IsTableEnabled(ctx context.Context, tableName *hbase.TTableName) (bool, error)
	GetTableDescriptor(ctx context.Context, table *hbase.TTableName) (*hbase.TTableDescriptor, error)
	CreateTable(ctx context.Context, desc *hbase.TTableDescriptor, splitKeys [][]byte) error
	DeleteTable(ctx context.Context, tableName *hbase.TTableName) error
	DisableTable(ctx context.Context, tableName *hbase.TTableName) error
	EnableTable(ctx context.Context, tableName *hbase.TTableName) error
	Put(ctx context.Context, table []byte, tput *hbase.TPut) error
	Get(ctx context.Context, table []byte, tget *hbase.TGet) (*hbase.TResult_, error)
	DeleteSingle(ctx context.Context, table []byte, tdelete *hbase.TDelete) error
	OpenScanner(ctx context.Context, table []byte, tscan *hbase.TScan) (int32, error)
	GetScannerRows(ctx context.Context, scannerId int32, numRows int32) ([]*hbase.TResult_, error)
	CloseScanner(ctx context.Context, scannerId int32) error
}

// metaTable is looked up at open, HTTP gives no other way to tell the gateway is up.
const metaTable = "hbase:meta"

// Driver talks to an HBase Thrift2 gateway over HTTP.
type Driver struct {
	// Transport replaces http.DefaultTransport when set.
	Transport http.RoundTripper
}

// Open implements hbkit.Driver.
func (d *Driver) Open(ctx context.Context, cfg *hbkit.Config) (hbkit.Session, error) {
	c, err := NewHBaseClient(cfg.GatewayURL(), Options{
		Headers:   HeadersFromMap(cfg.Headers),
		User:      cfg.User,
		Timeout:   cfg.Timeout.Duration,
		Transport: d.Transport,
	})
	if err != nil {
		return nil, hbkit.Errorf(hbkit.ErrConnectivity, "thrift gateway %s: %v", cfg.GatewayURL(), err)
	}
	return newSession(ctx, c)
}

func newSession(ctx context.Context, gw gateway) (*session, error) {
	if _, err := gw.TableExists(ctx, tableName(metaTable)); err != nil {
		return nil, classify(err, hbkit.ErrConnectivity)
	}
	return &session{gw: gw}, nil
}

type session struct {
	gw gateway
}

func (s *session) TableExists(ctx context.Context, table string) (bool, error) {
	ok, err := s.gw.TableExists(ctx, tableName(table))
	return ok, classify(err, hbkit.ErrAdmin)
}

func (s *session) TableEnabled(ctx context.Context, table string) (bool, error) {
	ok, err := s.gw.IsTableEnabled(ctx, tableName(table))
	return ok, classify(err, hbkit.ErrAdmin)
}

func (s *session) DescribeTable(ctx context.Context, table string) (*hbkit.TableDescriptor, error) {
	td, err := s.gw.GetTableDescriptor(ctx, tableName(table))
	if err != nil {
		return nil, classify(err, hbkit.ErrAdmin)
	}
	desc := &hbkit.TableDescriptor{Name: table}
	for _, c := range td.Columns {
		f := hbkit.ColumnFamilyDescriptor{Name: string(c.Name)}
		if c.MaxVersions != nil {
			f.MaxVersions = int(*c.MaxVersions)
		}
		if c.InMemory != nil {
			f.InMemory = *c.InMemory
		}
		desc.Families = append(desc.Families, f)
	}
	return desc, nil
}

func (s *session) CreateTable(ctx context.Context, desc *hbkit.TableDescriptor) error {
	td := &hbase.TTableDescriptor{TableName: tableName(desc.Name)}
	for _, f := range desc.Families {
		inMemory := f.InMemory
		c := &hbase.TColumnFamilyDescriptor{Name: []byte(f.Name), InMemory: &inMemory}
		if f.MaxVersions > 0 {
			v := int32(f.MaxVersions)
			c.MaxVersions = &v
		}
		td.Columns = append(td.Columns, c)
	}
	return classify(s.gw.CreateTable(ctx, td, nil), hbkit.ErrAdmin)
}

func (s *session) EnableTable(ctx context.Context, table string) error {
	return classify(s.gw.EnableTable(ctx, tableName(table)), hbkit.ErrAdmin)
}

func (s *session) DisableTable(ctx context.Context, table string) error {
	return classify(s.gw.DisableTable(ctx, tableName(table)), hbkit.ErrAdmin)
}

func (s *session) DeleteTable(ctx context.Context, table string) error {
	return classify(s.gw.DeleteTable(ctx, tableName(table)), hbkit.ErrAdmin)
}

func (s *session) Put(ctx context.Context, table string, m *hbkit.RowMutation) error {
	tput := &hbase.TPut{Row: m.Row, ColumnValues: make([]*hbase.TColumnValue, 0, len(m.Cells))}
	for _, c := range m.Cells {
		cv := &hbase.TColumnValue{Family: c.Family, Qualifier: c.Qualifier, Value: c.Value}
		if c.Value == nil {
			cv.Value = []byte{}
		}
		if c.Timestamp != 0 {
			ts := c.Timestamp
			cv.Timestamp = &ts
		}
		tput.ColumnValues = append(tput.ColumnValues, cv)
	}
	return classify(s.gw.Put(ctx, []byte(table), tput), nil)
}

func (s *session) Get(ctx context.Context, table string, g *hbkit.Get) (*hbkit.RowResult, error) {
	tget := &hbase.TGet{Row: g.Row, Columns: toTColumns(g.Columns), TimeRange: asOf(g.AsOf)}
	res, err := s.gw.Get(ctx, []byte(table), tget)
	if err != nil {
		return nil, classify(err, nil)
	}
	if r := toRowResult(res); r != nil {
		return r, nil
	}
	if len(g.Columns) > 0 {
		// an empty filtered result does not tell a missing row from missing
		// columns, ask again for the whole row
		res, err = s.gw.Get(ctx, []byte(table), &hbase.TGet{Row: g.Row, TimeRange: asOf(g.AsOf)})
		if err != nil {
			return nil, classify(err, nil)
		}
		if toRowResult(res) != nil {
			return &hbkit.RowResult{Row: g.Row}, nil
		}
	}
	return &hbkit.RowResult{Row: g.Row, NotFound: true}, nil
}

func (s *session) Delete(ctx context.Context, table string, row []byte, columns []hbkit.Column) error {
	return classify(s.gw.DeleteSingle(ctx, []byte(table), &hbase.TDelete{Row: row, Columns: toTColumns(columns)}), nil)
}

func (s *session) OpenScanner(ctx context.Context, table string, spec *hbkit.ScanSpec) (hbkit.Scanner, error) {
	caching := int32(spec.Caching)
	tscan := &hbase.TScan{
		StartRow:  spec.StartRow,
		StopRow:   spec.StopRow,
		Columns:   toTColumns(spec.Columns),
		TimeRange: asOf(spec.AsOf),
	}
	if caching > 0 {
		tscan.Caching = &caching
	}
	id, err := s.gw.OpenScanner(ctx, []byte(table), tscan)
	if err != nil {
		return nil, classify(err, nil)
	}
	return &scanner{gw: s.gw, id: id}, nil
}

// Close is a no-op, every call is its own HTTP request.
func (s *session) Close() error {
	return nil
}

type scanner struct {
	gw   gateway
	id   int32
	done bool
}

func (sc *scanner) Next(ctx context.Context, n int) ([]*hbkit.RowResult, error) {
	// rows without any cell are dropped, fetch again until a batch keeps one
	for !sc.done {
		results, err := sc.gw.GetScannerRows(ctx, sc.id, int32(n))
		if err != nil {
			return nil, classify(err, nil)
		}
		if len(results) == 0 {
			sc.done = true
			break
		}
		rows := make([]*hbkit.RowResult, 0, len(results))
		for _, res := range results {
			if r := toRowResult(res); r != nil {
				rows = append(rows, r)
			}
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, nil
}

func (sc *scanner) Close(ctx context.Context) error {
	return classify(sc.gw.CloseScanner(ctx, sc.id), nil)
}

// tableName splits "namespace:table", no namespace means the default one.
func tableName(name string) *hbase.TTableName {
	if ns, qualifier, ok := strings.Cut(name, ":"); ok {
		return &hbase.TTableName{Ns: []byte(ns), Qualifier: []byte(qualifier)}
	}
	return &hbase.TTableName{Qualifier: []byte(name)}
}

func toTColumns(columns []hbkit.Column) []*hbase.TColumn {
	if len(columns) == 0 {
		return nil
	}
	cols := make([]*hbase.TColumn, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, &hbase.TColumn{Family: c.Family, Qualifier: c.Qualifier})
	}
	return cols
}

// asOf reads the latest version at or before ts, the range max is exclusive.
func asOf(ts int64) *hbase.TTimeRange {
	if ts <= 0 {
		return nil
	}
	return &hbase.TTimeRange{MinStamp: 0, MaxStamp: ts + 1}
}

func toRowResult(res *hbase.TResult_) *hbkit.RowResult {
	if res == nil || len(res.ColumnValues) == 0 {
		return nil
	}
	r := &hbkit.RowResult{Row: res.Row, Cells: make([]hbkit.Cell, 0, len(res.ColumnValues))}
	for _, cv := range res.ColumnValues {
		value := cv.GetValue()
		if value == nil {
			value = []byte{}
		}
		r.Cells = append(r.Cells, hbkit.Cell{
			Family:    cv.Family,
			Qualifier: cv.Qualifier,
			Value:     value,
			Timestamp: cv.GetTimestamp(),
		})
	}
	return r
}

// classify maps gateway failures onto the hbkit error kinds. Exceptions the
// store raised carry the Java exception name in their message.
func classify(err error, fallback error) error {
	if err == nil {
		return nil
	}
	var ioErr *hbase.TIOError
	if errors.As(err, &ioErr) {
		msg := ioErr.GetMessage()
		switch {
		case strings.Contains(msg, "NoSuchColumnFamilyException"):
			return hbkit.Errorf(hbkit.ErrMutation, "%s", msg)
		case strings.Contains(msg, "TableNotDisabledException"),
			strings.Contains(msg, "TableNotEnabledException"):
			return hbkit.Errorf(hbkit.ErrTableState, "%s", msg)
		case strings.Contains(msg, "TableExistsException"):
			return hbkit.Errorf(hbkit.ErrAdmin, "%s", msg)
		}
	}
	var iaErr *hbase.TIllegalArgument
	if errors.As(err, &iaErr) && strings.Contains(iaErr.GetMessage(), "NoSuchColumnFamilyException") {
		return hbkit.Errorf(hbkit.ErrMutation, "%s", iaErr.GetMessage())
	}
	var transErr thrift.TTransportException
	if errors.As(err, &transErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return &hbkit.Error{Kind: hbkit.ErrConnectivity, Err: err}
	}
	if fallback == nil {
		return err
	}
	return &hbkit.Error{Kind: fallback, Err: err}
}
