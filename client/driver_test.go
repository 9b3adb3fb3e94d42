package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challenai/hbkit"
	"github.com/challenai/hbkit/thrift/hbase"
)

// fakeGateway answers with canned replies and records the last request.
type fakeGateway struct {
	gateway

	exists    bool
	existsErr error
	desc      *hbase.TTableDescriptor
	created   *hbase.TTableDescriptor
	adminErr  error

	lastTable []byte
	put       *hbase.TPut
	putErr    error
	gets      []*hbase.TGet
	result    *hbase.TResult_
	// wholeRow answers a get without columns when set
	wholeRow  *hbase.TResult_
	deleted   *hbase.TDelete
	scan      *hbase.TScan
	batches   [][]*hbase.TResult_
	closedIDs []int32
}

func (f *fakeGateway) TableExists(ctx context.Context, tableName *hbase.TTableName) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeGateway) GetTableDescriptor(ctx context.Context, table *hbase.TTableName) (*hbase.TTableDescriptor, error) {
	return f.desc, f.adminErr
}

func (f *fakeGateway) CreateTable(ctx context.Context, desc *hbase.TTableDescriptor, splitKeys [][]byte) error {
	f.created = desc
	return f.adminErr
}

func (f *fakeGateway) DeleteTable(ctx context.Context, tableName *hbase.TTableName) error {
	return f.adminErr
}

func (f *fakeGateway) Put(ctx context.Context, table []byte, tput *hbase.TPut) error {
	f.lastTable, f.put = table, tput
	return f.putErr
}

func (f *fakeGateway) Get(ctx context.Context, table []byte, tget *hbase.TGet) (*hbase.TResult_, error) {
	f.lastTable = table
	f.gets = append(f.gets, tget)
	if len(tget.Columns) == 0 && f.wholeRow != nil {
		return f.wholeRow, nil
	}
	return f.result, nil
}

func (f *fakeGateway) DeleteSingle(ctx context.Context, table []byte, tdelete *hbase.TDelete) error {
	f.lastTable, f.deleted = table, tdelete
	return nil
}

func (f *fakeGateway) OpenScanner(ctx context.Context, table []byte, tscan *hbase.TScan) (int32, error) {
	f.lastTable, f.scan = table, tscan
	return 9, nil
}

func (f *fakeGateway) GetScannerRows(ctx context.Context, scannerId int32, numRows int32) ([]*hbase.TResult_, error) {
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeGateway) CloseScanner(ctx context.Context, scannerId int32) error {
	f.closedIDs = append(f.closedIDs, scannerId)
	return nil
}

func ioError(msg string) error {
	return &hbase.TIOError{Message: &msg}
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "myLittleHBaseTable", tableName("myLittleHBaseTable").String())
	tn := tableName("ns:T")
	assert.Equal(t, []byte("ns"), tn.Ns)
	assert.Equal(t, []byte("T"), tn.Qualifier)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil, hbkit.ErrAdmin))

	err := classify(ioError("org.apache.hadoop.hbase.TableNotDisabledException: T"), hbkit.ErrAdmin)
	assert.ErrorIs(t, err, hbkit.ErrTableState)

	err = classify(ioError("org.apache.hadoop.hbase.regionserver.NoSuchColumnFamilyException: Column family x does not exist"), nil)
	assert.ErrorIs(t, err, hbkit.ErrMutation)

	err = classify(ioError("org.apache.hadoop.hbase.TableExistsException: T"), nil)
	assert.ErrorIs(t, err, hbkit.ErrAdmin)

	err = classify(thrift.NewTTransportException(thrift.NOT_OPEN, "connection refused"), hbkit.ErrAdmin)
	assert.ErrorIs(t, err, hbkit.ErrConnectivity)

	err = classify(ioError("something else"), hbkit.ErrAdmin)
	assert.ErrorIs(t, err, hbkit.ErrAdmin)

	plain := ioError("something else")
	assert.Equal(t, plain, classify(plain, nil))
}

func TestSessionOpenChecksGateway(t *testing.T) {
	ctx := context.Background()
	_, err := newSession(ctx, &fakeGateway{existsErr: thrift.NewTTransportException(thrift.TIMED_OUT, "i/o timeout")})
	assert.ErrorIs(t, err, hbkit.ErrConnectivity)

	_, err = newSession(ctx, &fakeGateway{existsErr: ioError("server is starting")})
	assert.ErrorIs(t, err, hbkit.ErrConnectivity)

	s, err := newSession(ctx, &fakeGateway{})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestSessionAdmin(t *testing.T) {
	ctx := context.Background()
	two, on := int32(100), true
	gw := &fakeGateway{desc: &hbase.TTableDescriptor{
		TableName: tableName("T"),
		Columns: []*hbase.TColumnFamilyDescriptor{
			{Name: []byte("F"), MaxVersions: &two, InMemory: &on},
			{Name: []byte("G")},
		},
	}}
	s := &session{gw: gw}

	desc, err := s.DescribeTable(ctx, "T")
	require.NoError(t, err)
	assert.True(t, desc.Equal(hbkit.NewTableDescriptor("T",
		hbkit.ColumnFamilyDescriptor{Name: "F", MaxVersions: 100, InMemory: true},
		hbkit.ColumnFamilyDescriptor{Name: "G"},
	)))

	require.NoError(t, s.CreateTable(ctx, hbkit.NewTableDescriptor("ns:T",
		hbkit.ColumnFamilyDescriptor{Name: "F", MaxVersions: 3},
		hbkit.ColumnFamilyDescriptor{Name: "G"},
	)))
	require.Len(t, gw.created.Columns, 2)
	assert.Equal(t, "ns:T", gw.created.TableName.String())
	assert.Equal(t, int32(3), *gw.created.Columns[0].MaxVersions)
	assert.Nil(t, gw.created.Columns[1].MaxVersions)
	assert.False(t, *gw.created.Columns[1].InMemory)

	gw.adminErr = ioError("org.apache.hadoop.hbase.TableNotDisabledException: T")
	assert.ErrorIs(t, s.DeleteTable(ctx, "T"), hbkit.ErrTableState)
	gw.adminErr = ioError("org.apache.hadoop.hbase.TableNotFoundException: T")
	_, err = s.DescribeTable(ctx, "T")
	assert.ErrorIs(t, err, hbkit.ErrAdmin)
}

func TestSessionPutGetDelete(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	s := &session{gw: gw}

	put := hbkit.NewPut([]byte("r1")).
		Add("F", "q", []byte("v")).
		AddWithTimestamp("F", "e", nil, 5)
	require.NoError(t, s.Put(ctx, "T", put))
	assert.Equal(t, []byte("T"), gw.lastTable)
	require.Len(t, gw.put.ColumnValues, 2)
	assert.Nil(t, gw.put.ColumnValues[0].Timestamp)
	assert.Equal(t, []byte{}, gw.put.ColumnValues[1].Value)
	assert.Equal(t, int64(5), *gw.put.ColumnValues[1].Timestamp)

	gw.putErr = ioError("org.apache.hadoop.hbase.regionserver.NoSuchColumnFamilyException: x")
	assert.ErrorIs(t, s.Put(ctx, "T", put), hbkit.ErrMutation)

	// a row without any cell is absent
	gw.result = &hbase.TResult_{}
	res, err := s.Get(ctx, "T", &hbkit.Get{Row: []byte("r2"), AsOf: 10, Columns: []hbkit.Column{hbkit.FamilyCol("F")}})
	require.NoError(t, err)
	assert.True(t, res.NotFound)
	assert.Equal(t, []byte("r2"), res.Row)
	require.Len(t, gw.gets, 2)
	assert.Equal(t, int64(11), gw.gets[0].TimeRange.MaxStamp)
	require.Len(t, gw.gets[0].Columns, 1)
	assert.Nil(t, gw.gets[0].Columns[0].Qualifier)
	assert.Empty(t, gw.gets[1].Columns)
	assert.Equal(t, int64(11), gw.gets[1].TimeRange.MaxStamp)

	ts := int64(3)
	gw.result = &hbase.TResult_{Row: []byte("r1"), ColumnValues: []*hbase.TColumnValue{
		{Family: []byte("F"), Qualifier: []byte("e"), Timestamp: &ts},
	}}
	gw.gets = nil
	res, err = s.Get(ctx, "T", hbkit.NewGet([]byte("r1")))
	require.NoError(t, err)
	require.Len(t, gw.gets, 1)
	assert.Nil(t, gw.gets[0].TimeRange)
	v, ok := res.Value("F", "e")
	assert.True(t, ok)
	assert.Equal(t, []byte{}, v)
	assert.Equal(t, int64(3), res.Cells[0].Timestamp)

	require.NoError(t, s.Delete(ctx, "T", []byte("r1"), []hbkit.Column{hbkit.Col("F", "q")}))
	assert.Equal(t, []byte("r1"), gw.deleted.Row)
	assert.Equal(t, []byte("q"), gw.deleted.Columns[0].Qualifier)
}

func TestSessionGetMissingColumnsOfExistingRow(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		result: &hbase.TResult_{},
		wholeRow: &hbase.TResult_{Row: []byte("r1"), ColumnValues: []*hbase.TColumnValue{
			{Family: []byte("F"), Qualifier: []byte("a"), Value: []byte("v")},
		}},
	}
	s := &session{gw: gw}

	res, err := s.Get(ctx, "T", hbkit.NewGet([]byte("r1"), hbkit.Col("F", "missing")))
	require.NoError(t, err)
	assert.False(t, res.NotFound)
	assert.Equal(t, []byte("r1"), res.Row)
	assert.Empty(t, res.Cells)
	_, ok := res.Value("F", "missing")
	assert.False(t, ok)
	assert.Len(t, gw.gets, 2)
}

func TestSessionScanner(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{batches: [][]*hbase.TResult_{
		{
			{Row: []byte("a"), ColumnValues: []*hbase.TColumnValue{{Family: []byte("F"), Qualifier: []byte("q"), Value: []byte("1")}}},
			{Row: []byte("b")},
		},
	}}
	s := &session{gw: gw}

	sc, err := s.OpenScanner(ctx, "T", &hbkit.ScanSpec{StartRow: []byte("a"), Caching: 2, Columns: []hbkit.Column{hbkit.Col("F", "q")}})
	require.NoError(t, err)
	assert.Equal(t, int32(2), *gw.scan.Caching)
	assert.Equal(t, []byte("a"), gw.scan.StartRow)

	rows, err := sc.Next(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []byte("a"), rows[0].Row)

	rows, err = sc.Next(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = sc.Next(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, sc.Close(ctx))
	assert.Equal(t, []int32{9}, gw.closedIDs)
}

func TestRoundTripperHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
	}))
	defer srv.Close()

	c := &http.Client{Transport: &RoundTripper{
		Headers: HeadersFromMap(map[string]string{"X-Token": "t", "Authorization": "Basic x"}),
		User:    "cloudera",
	}}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/?a=b", nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, got)
	assert.Equal(t, "t", got.Header.Get("X-Token"))
	assert.Equal(t, "Basic x", got.Header.Get("Authorization"))
	assert.Equal(t, "cloudera", got.URL.Query().Get("doAs"))
	assert.Equal(t, "b", got.URL.Query().Get("a"))
	// the caller's request is left alone
	assert.Empty(t, req.Header.Get("X-Token"))
}

func TestHeadersFromMapSorted(t *testing.T) {
	h := HeadersFromMap(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []Header{{"a", "1"}, {"b", "2"}}, h)
	assert.Empty(t, HeadersFromMap(nil))
}

func TestDriverOpenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := hbkit.DefaultConfig()
	cfg.Gateway = srv.URL
	cfg.Timeout = hbkit.Duration{Duration: time.Second}
	_, err := (&Driver{}).Open(context.Background(), cfg)
	assert.ErrorIs(t, err, hbkit.ErrConnectivity)
}
