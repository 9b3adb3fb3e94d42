package hbase

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// THBaseServiceClient calls a Thrift2 gateway.
type THBaseServiceClient struct {
	c thrift.TClient
}

func NewTHBaseServiceClient(c thrift.TClient) *THBaseServiceClient {
	return &THBaseServiceClient{c: c}
}

// TableExists reports whether the table is known, enabled or not.
func (p *THBaseServiceClient) TableExists(ctx context.Context, tableName *TTableName) (bool, error) {
	var r bool
	res := &result{name: "tableExists_result", successType: thrift.BOOL, success: func(ctx context.Context, iprot thrift.TProtocol) (err error) {
		r, err = iprot.ReadBool(ctx)
		return err
	}}
	err := p.call(ctx, "tableExists", structArg("tableName", 1, tableName), res)
	return r, err
}

// IsTableEnabled reports whether the table serves reads and writes.
func (p *THBaseServiceClient) IsTableEnabled(ctx context.Context, tableName *TTableName) (bool, error) {
	var r bool
	res := &result{name: "isTableEnabled_result", successType: thrift.BOOL, success: func(ctx context.Context, iprot thrift.TProtocol) (err error) {
		r, err = iprot.ReadBool(ctx)
		return err
	}}
	err := p.call(ctx, "isTableEnabled", structArg("tableName", 1, tableName), res)
	return r, err
}

// GetTableDescriptor describes an existing table.
func (p *THBaseServiceClient) GetTableDescriptor(ctx context.Context, table *TTableName) (*TTableDescriptor, error) {
	r := &TTableDescriptor{}
	res := &result{name: "getTableDescriptor_result", successType: thrift.STRUCT, success: func(ctx context.Context, iprot thrift.TProtocol) error {
		return r.Read(ctx, iprot)
	}}
	if err := p.call(ctx, "getTableDescriptor", structArg("table", 1, table), res); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateTable creates a table with all of its families, splitKeys may be nil.
func (p *THBaseServiceClient) CreateTable(ctx context.Context, desc *TTableDescriptor, splitKeys [][]byte) error {
	fields := structArg("desc", 1, desc)
	if splitKeys != nil {
		fields = append(fields, func(ctx context.Context, oprot thrift.TProtocol) error {
			return writeBinaryList(ctx, oprot, "splitKeys", 2, splitKeys)
		})
	}
	return p.call(ctx, "createTable", fields, &result{name: "createTable_result"})
}

// DeleteTable drops a disabled table.
func (p *THBaseServiceClient) DeleteTable(ctx context.Context, tableName *TTableName) error {
	return p.call(ctx, "deleteTable", structArg("tableName", 1, tableName), &result{name: "deleteTable_result"})
}

// DisableTable takes a table offline.
func (p *THBaseServiceClient) DisableTable(ctx context.Context, tableName *TTableName) error {
	return p.call(ctx, "disableTable", structArg("tableName", 1, tableName), &result{name: "disableTable_result"})
}

// EnableTable brings a table online.
func (p *THBaseServiceClient) EnableTable(ctx context.Context, tableName *TTableName) error {
	return p.call(ctx, "enableTable", structArg("tableName", 1, tableName), &result{name: "enableTable_result"})
}

// Put writes the cells of one row.
func (p *THBaseServiceClient) Put(ctx context.Context, table []byte, tput *TPut) error {
	fields := append(binaryArg("table", 1, table), structArg("tput", 2, tput)...)
	return p.call(ctx, "put", fields, &result{name: "put_result"})
}

// Get reads one row, the result has no column value when the row is absent.
func (p *THBaseServiceClient) Get(ctx context.Context, table []byte, tget *TGet) (*TResult_, error) {
	r := &TResult_{}
	res := &result{name: "get_result", successType: thrift.STRUCT, success: func(ctx context.Context, iprot thrift.TProtocol) error {
		return r.Read(ctx, iprot)
	}}
	fields := append(binaryArg("table", 1, table), structArg("tget", 2, tget)...)
	if err := p.call(ctx, "get", fields, res); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteSingle removes a row or some of its columns.
func (p *THBaseServiceClient) DeleteSingle(ctx context.Context, table []byte, tdelete *TDelete) error {
	fields := append(binaryArg("table", 1, table), structArg("tdelete", 2, tdelete)...)
	return p.call(ctx, "deleteSingle", fields, &result{name: "deleteSingle_result"})
}

// OpenScanner opens a server side scanner and returns its id.
func (p *THBaseServiceClient) OpenScanner(ctx context.Context, table []byte, tscan *TScan) (int32, error) {
	var r int32
	res := &result{name: "openScanner_result", successType: thrift.I32, success: func(ctx context.Context, iprot thrift.TProtocol) (err error) {
		r, err = iprot.ReadI32(ctx)
		return err
	}}
	fields := append(binaryArg("table", 1, table), structArg("tscan", 2, tscan)...)
	err := p.call(ctx, "openScanner", fields, res)
	return r, err
}

// GetScannerRows fetches up to numRows rows, an empty list once the scanner is exhausted.
func (p *THBaseServiceClient) GetScannerRows(ctx context.Context, scannerId int32, numRows int32) ([]*TResult_, error) {
	var r []*TResult_
	res := &result{name: "getScannerRows_result", successType: thrift.LIST, success: func(ctx context.Context, iprot thrift.TProtocol) (err error) {
		r, err = readStructList(ctx, iprot, func() *TResult_ { return &TResult_{} })
		return err
	}}
	fields := append(i32Arg("scannerId", 1, scannerId), i32Arg("numRows", 2, numRows)...)
	err := p.call(ctx, "getScannerRows", fields, res)
	return r, err
}

// CloseScanner releases a scanner.
func (p *THBaseServiceClient) CloseScanner(ctx context.Context, scannerId int32) error {
	return p.call(ctx, "closeScanner", i32Arg("scannerId", 1, scannerId), &result{name: "closeScanner_result"})
}

func (p *THBaseServiceClient) call(ctx context.Context, method string, fields []argField, res *result) error {
	if _, err := p.c.Call(ctx, method, &args{name: method + "_args", fields: fields}, res); err != nil {
		return err
	}
	return res.err(method)
}

type argField func(ctx context.Context, oprot thrift.TProtocol) error

func structArg(name string, id int16, v thrift.TStruct) []argField {
	return []argField{func(ctx context.Context, oprot thrift.TProtocol) error {
		return writeStructField(ctx, oprot, name, id, v)
	}}
}

func binaryArg(name string, id int16, v []byte) []argField {
	return []argField{func(ctx context.Context, oprot thrift.TProtocol) error {
		return writeBinary(ctx, oprot, name, id, v)
	}}
}

func i32Arg(name string, id int16, v int32) []argField {
	return []argField{func(ctx context.Context, oprot thrift.TProtocol) error {
		return writeI32(ctx, oprot, name, id, v)
	}}
}

// args is the request struct of a call. Clients only ever write it.
type args struct {
	name   string
	fields []argField
}

func (p *args) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, p.name, func() error {
		for _, f := range p.fields {
			if err := f(ctx, oprot); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *args) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(int16, thrift.TType) (bool, error) { return false, nil })
}

// result is the reply struct of a call: field 0 holds the return value, the
// others the declared exceptions.
type result struct {
	name        string
	successType thrift.TType
	success     func(ctx context.Context, iprot thrift.TProtocol) error
	isSet       bool
	Io          *TIOError
	Ia          *TIllegalArgument
}

func (p *result) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 0 && p.success != nil && t == p.successType:
			p.isSet = true
			return true, p.success(ctx, iprot)
		case id == 1 && t == thrift.STRUCT:
			p.Io = &TIOError{}
			return true, p.Io.Read(ctx, iprot)
		case id == 2 && t == thrift.STRUCT:
			p.Ia = &TIllegalArgument{}
			return true, p.Ia.Read(ctx, iprot)
		}
		return false, nil
	})
}

func (p *result) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, p.name, func() error {
		if p.Io != nil {
			if err := writeStructField(ctx, oprot, "io", 1, p.Io); err != nil {
				return err
			}
		}
		if p.Ia != nil {
			return writeStructField(ctx, oprot, "ia", 2, p.Ia)
		}
		return nil
	})
}

func (p *result) err(method string) error {
	switch {
	case p.Io != nil:
		return p.Io
	case p.Ia != nil:
		return p.Ia
	case p.success != nil && !p.isSet:
		return thrift.NewTApplicationException(thrift.MISSING_RESULT, method+" failed: unknown result")
	}
	return nil
}
