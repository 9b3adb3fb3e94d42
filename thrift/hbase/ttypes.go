// Package hbase holds the subset of the HBase Thrift2 IDL (hbase.thrift,
// service THBaseService) the client calls. Field ids follow the IDL, so the
// structs interoperate with a stock Thrift2 gateway.
package hbase

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// TTimeRange bounds the timestamps of the versions read, min inclusive, max exclusive.
type TTimeRange struct {
	MinStamp int64
	MaxStamp int64
}

func (p *TTimeRange) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TTimeRange", func() error {
		if err := writeI64(ctx, oprot, "minStamp", 1, p.MinStamp); err != nil {
			return err
		}
		return writeI64(ctx, oprot, "maxStamp", 2, p.MaxStamp)
	})
}

func (p *TTimeRange) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I64:
			p.MinStamp, err = iprot.ReadI64(ctx)
		case id == 2 && t == thrift.I64:
			p.MaxStamp, err = iprot.ReadI64(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

// TColumn addresses a family, or a single qualifier of it.
type TColumn struct {
	Family    []byte
	Qualifier []byte
	Timestamp *int64
}

func (p *TColumn) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TColumn", func() error {
		if err := writeBinary(ctx, oprot, "family", 1, p.Family); err != nil {
			return err
		}
		if p.Qualifier != nil {
			if err := writeBinary(ctx, oprot, "qualifier", 2, p.Qualifier); err != nil {
				return err
			}
		}
		if p.Timestamp != nil {
			return writeI64(ctx, oprot, "timestamp", 3, *p.Timestamp)
		}
		return nil
	})
}

func (p *TColumn) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Family, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			p.Qualifier, err = iprot.ReadBinary(ctx)
		case id == 3 && t == thrift.I64:
			var v int64
			v, err = iprot.ReadI64(ctx)
			p.Timestamp = &v
		default:
			return false, nil
		}
		return true, err
	})
}

// TColumnValue is one cell of a put or a result.
type TColumnValue struct {
	Family    []byte
	Qualifier []byte
	Value     []byte
	Timestamp *int64
}

func (p *TColumnValue) GetValue() []byte {
	return p.Value
}

func (p *TColumnValue) GetTimestamp() int64 {
	if p.Timestamp == nil {
		return 0
	}
	return *p.Timestamp
}

func (p *TColumnValue) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TColumnValue", func() error {
		if err := writeBinary(ctx, oprot, "family", 1, p.Family); err != nil {
			return err
		}
		if err := writeBinary(ctx, oprot, "qualifier", 2, p.Qualifier); err != nil {
			return err
		}
		if err := writeBinary(ctx, oprot, "value", 3, p.Value); err != nil {
			return err
		}
		if p.Timestamp != nil {
			return writeI64(ctx, oprot, "timestamp", 4, *p.Timestamp)
		}
		return nil
	})
}

func (p *TColumnValue) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Family, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			p.Qualifier, err = iprot.ReadBinary(ctx)
		case id == 3 && t == thrift.STRING:
			p.Value, err = iprot.ReadBinary(ctx)
		case id == 4 && t == thrift.I64:
			var v int64
			v, err = iprot.ReadI64(ctx)
			p.Timestamp = &v
		default:
			return false, nil
		}
		return true, err
	})
}

// TResult_ is a row returned by get and by scanners. The trailing underscore
// is how the Go generator names the IDL struct TResult.
type TResult_ struct {
	Row          []byte
	ColumnValues []*TColumnValue
}

func (p *TResult_) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TResult", func() error {
		if p.Row != nil {
			if err := writeBinary(ctx, oprot, "row", 1, p.Row); err != nil {
				return err
			}
		}
		return writeStructList(ctx, oprot, "columnValues", 2, p.ColumnValues)
	})
}

func (p *TResult_) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Row, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			p.ColumnValues, err = readStructList(ctx, iprot, func() *TColumnValue { return &TColumnValue{} })
		default:
			return false, nil
		}
		return true, err
	})
}

// TGet is a point lookup.
type TGet struct {
	Row         []byte
	Columns     []*TColumn
	TimeRange   *TTimeRange
	MaxVersions *int32
}

func (p *TGet) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TGet", func() error {
		if err := writeBinary(ctx, oprot, "row", 1, p.Row); err != nil {
			return err
		}
		if p.Columns != nil {
			if err := writeStructList(ctx, oprot, "columns", 2, p.Columns); err != nil {
				return err
			}
		}
		if p.TimeRange != nil {
			if err := writeStructField(ctx, oprot, "timeRange", 4, p.TimeRange); err != nil {
				return err
			}
		}
		if p.MaxVersions != nil {
			return writeI32(ctx, oprot, "maxVersions", 5, *p.MaxVersions)
		}
		return nil
	})
}

func (p *TGet) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Row, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			p.Columns, err = readStructList(ctx, iprot, func() *TColumn { return &TColumn{} })
		case id == 4 && t == thrift.STRUCT:
			p.TimeRange = &TTimeRange{}
			err = p.TimeRange.Read(ctx, iprot)
		case id == 5 && t == thrift.I32:
			var v int32
			v, err = iprot.ReadI32(ctx)
			p.MaxVersions = &v
		default:
			return false, nil
		}
		return true, err
	})
}

// TPut writes the cells of one row.
type TPut struct {
	Row          []byte
	ColumnValues []*TColumnValue
	Timestamp    *int64
}

func (p *TPut) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TPut", func() error {
		if err := writeBinary(ctx, oprot, "row", 1, p.Row); err != nil {
			return err
		}
		if err := writeStructList(ctx, oprot, "columnValues", 2, p.ColumnValues); err != nil {
			return err
		}
		if p.Timestamp != nil {
			return writeI64(ctx, oprot, "timestamp", 3, *p.Timestamp)
		}
		return nil
	})
}

func (p *TPut) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Row, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			p.ColumnValues, err = readStructList(ctx, iprot, func() *TColumnValue { return &TColumnValue{} })
		case id == 3 && t == thrift.I64:
			var v int64
			v, err = iprot.ReadI64(ctx)
			p.Timestamp = &v
		default:
			return false, nil
		}
		return true, err
	})
}

// TDelete removes a row, or the listed columns of it.
type TDelete struct {
	Row     []byte
	Columns []*TColumn
}

func (p *TDelete) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TDelete", func() error {
		if err := writeBinary(ctx, oprot, "row", 1, p.Row); err != nil {
			return err
		}
		if p.Columns != nil {
			return writeStructList(ctx, oprot, "columns", 2, p.Columns)
		}
		return nil
	})
}

func (p *TDelete) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Row, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			p.Columns, err = readStructList(ctx, iprot, func() *TColumn { return &TColumn{} })
		default:
			return false, nil
		}
		return true, err
	})
}

// TScan describes a scanner.
type TScan struct {
	StartRow     []byte
	StopRow      []byte
	Columns      []*TColumn
	Caching      *int32
	TimeRange    *TTimeRange
	FilterString []byte
}

func (p *TScan) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TScan", func() error {
		if p.StartRow != nil {
			if err := writeBinary(ctx, oprot, "startRow", 1, p.StartRow); err != nil {
				return err
			}
		}
		if p.StopRow != nil {
			if err := writeBinary(ctx, oprot, "stopRow", 2, p.StopRow); err != nil {
				return err
			}
		}
		if p.Columns != nil {
			if err := writeStructList(ctx, oprot, "columns", 3, p.Columns); err != nil {
				return err
			}
		}
		if p.Caching != nil {
			if err := writeI32(ctx, oprot, "caching", 4, *p.Caching); err != nil {
				return err
			}
		}
		if p.TimeRange != nil {
			if err := writeStructField(ctx, oprot, "timeRange", 6, p.TimeRange); err != nil {
				return err
			}
		}
		if p.FilterString != nil {
			return writeBinary(ctx, oprot, "filterString", 7, p.FilterString)
		}
		return nil
	})
}

func (p *TScan) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.StartRow, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			p.StopRow, err = iprot.ReadBinary(ctx)
		case id == 3 && t == thrift.LIST:
			p.Columns, err = readStructList(ctx, iprot, func() *TColumn { return &TColumn{} })
		case id == 4 && t == thrift.I32:
			var v int32
			v, err = iprot.ReadI32(ctx)
			p.Caching = &v
		case id == 6 && t == thrift.STRUCT:
			p.TimeRange = &TTimeRange{}
			err = p.TimeRange.Read(ctx, iprot)
		case id == 7 && t == thrift.STRING:
			p.FilterString, err = iprot.ReadBinary(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

// TTableName is a namespace qualified table name.
type TTableName struct {
	Ns        []byte
	Qualifier []byte
}

func (p *TTableName) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TTableName", func() error {
		if p.Ns != nil {
			if err := writeBinary(ctx, oprot, "ns", 1, p.Ns); err != nil {
				return err
			}
		}
		return writeBinary(ctx, oprot, "qualifier", 2, p.Qualifier)
	})
}

func (p *TTableName) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Ns, err = iprot.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			p.Qualifier, err = iprot.ReadBinary(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (p *TTableName) String() string {
	if len(p.Ns) == 0 {
		return string(p.Qualifier)
	}
	return fmt.Sprintf("%s:%s", p.Ns, p.Qualifier)
}

// TColumnFamilyDescriptor carries the family settings the client uses.
type TColumnFamilyDescriptor struct {
	Name        []byte
	MaxVersions *int32
	InMemory    *bool
}

func (p *TColumnFamilyDescriptor) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TColumnFamilyDescriptor", func() error {
		if err := writeBinary(ctx, oprot, "name", 1, p.Name); err != nil {
			return err
		}
		if p.MaxVersions != nil {
			if err := writeI32(ctx, oprot, "maxVersions", 10, *p.MaxVersions); err != nil {
				return err
			}
		}
		if p.InMemory != nil {
			return writeBool(ctx, oprot, "inMemory", 20, *p.InMemory)
		}
		return nil
	})
}

func (p *TColumnFamilyDescriptor) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			p.Name, err = iprot.ReadBinary(ctx)
		case id == 10 && t == thrift.I32:
			var v int32
			v, err = iprot.ReadI32(ctx)
			p.MaxVersions = &v
		case id == 20 && t == thrift.BOOL:
			var v bool
			v, err = iprot.ReadBool(ctx)
			p.InMemory = &v
		default:
			return false, nil
		}
		return true, err
	})
}

// TTableDescriptor is a table and its column families.
type TTableDescriptor struct {
	TableName *TTableName
	Columns   []*TColumnFamilyDescriptor
}

func (p *TTableDescriptor) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TTableDescriptor", func() error {
		if err := writeStructField(ctx, oprot, "tableName", 1, p.TableName); err != nil {
			return err
		}
		if p.Columns != nil {
			return writeStructList(ctx, oprot, "columns", 2, p.Columns)
		}
		return nil
	})
}

func (p *TTableDescriptor) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRUCT:
			p.TableName = &TTableName{}
			err = p.TableName.Read(ctx, iprot)
		case id == 2 && t == thrift.LIST:
			p.Columns, err = readStructList(ctx, iprot, func() *TColumnFamilyDescriptor { return &TColumnFamilyDescriptor{} })
		default:
			return false, nil
		}
		return true, err
	})
}

// TIOError is thrown by the gateway for any failure of the underlying store.
type TIOError struct {
	Message *string
}

func (p *TIOError) Error() string {
	if p.Message == nil {
		return "TIOError"
	}
	return "TIOError: " + *p.Message
}

func (p *TIOError) GetMessage() string {
	if p.Message == nil {
		return ""
	}
	return *p.Message
}

func (p *TIOError) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TIOError", func() error {
		if p.Message != nil {
			return writeString(ctx, oprot, "message", 1, *p.Message)
		}
		return nil
	})
}

func (p *TIOError) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		if id != 1 || t != thrift.STRING {
			return false, nil
		}
		v, err := iprot.ReadString(ctx)
		p.Message = &v
		return true, err
	})
}

// TIllegalArgument is thrown for invalid arguments, an unknown scanner id for instance.
type TIllegalArgument struct {
	Message *string
}

func (p *TIllegalArgument) Error() string {
	if p.Message == nil {
		return "TIllegalArgument"
	}
	return "TIllegalArgument: " + *p.Message
}

func (p *TIllegalArgument) GetMessage() string {
	if p.Message == nil {
		return ""
	}
	return *p.Message
}

func (p *TIllegalArgument) Write(ctx context.Context, oprot thrift.TProtocol) error {
	return writeStruct(ctx, oprot, "TIllegalArgument", func() error {
		if p.Message != nil {
			return writeString(ctx, oprot, "message", 1, *p.Message)
		}
		return nil
	})
}

func (p *TIllegalArgument) Read(ctx context.Context, iprot thrift.TProtocol) error {
	return readStruct(ctx, iprot, func(id int16, t thrift.TType) (bool, error) {
		if id != 1 || t != thrift.STRING {
			return false, nil
		}
		v, err := iprot.ReadString(ctx)
		p.Message = &v
		return true, err
	})
}
