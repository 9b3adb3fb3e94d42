package hbase

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

func writeStruct(ctx context.Context, p thrift.TProtocol, name string, fields func() error) error {
	if err := p.WriteStructBegin(ctx, name); err != nil {
		return thrift.PrependError(name+" write struct begin error: ", err)
	}
	if err := fields(); err != nil {
		return err
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError(name+" write field stop error: ", err)
	}
	if err := p.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError(name+" write struct end error: ", err)
	}
	return nil
}

func writeField(ctx context.Context, p thrift.TProtocol, name string, t thrift.TType, id int16, value func() error) error {
	if err := p.WriteFieldBegin(ctx, name, t, id); err != nil {
		return thrift.PrependError("write field begin error "+name+": ", err)
	}
	if err := value(); err != nil {
		return thrift.PrependError("write field error "+name+": ", err)
	}
	if err := p.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError("write field end error "+name+": ", err)
	}
	return nil
}

func writeBinary(ctx context.Context, p thrift.TProtocol, name string, id int16, v []byte) error {
	return writeField(ctx, p, name, thrift.STRING, id, func() error { return p.WriteBinary(ctx, v) })
}

func writeString(ctx context.Context, p thrift.TProtocol, name string, id int16, v string) error {
	return writeField(ctx, p, name, thrift.STRING, id, func() error { return p.WriteString(ctx, v) })
}

func writeI32(ctx context.Context, p thrift.TProtocol, name string, id int16, v int32) error {
	return writeField(ctx, p, name, thrift.I32, id, func() error { return p.WriteI32(ctx, v) })
}

func writeI64(ctx context.Context, p thrift.TProtocol, name string, id int16, v int64) error {
	return writeField(ctx, p, name, thrift.I64, id, func() error { return p.WriteI64(ctx, v) })
}

func writeBool(ctx context.Context, p thrift.TProtocol, name string, id int16, v bool) error {
	return writeField(ctx, p, name, thrift.BOOL, id, func() error { return p.WriteBool(ctx, v) })
}

func writeStructField(ctx context.Context, p thrift.TProtocol, name string, id int16, v thrift.TStruct) error {
	return writeField(ctx, p, name, thrift.STRUCT, id, func() error { return v.Write(ctx, p) })
}

func writeBinaryList(ctx context.Context, p thrift.TProtocol, name string, id int16, items [][]byte) error {
	return writeField(ctx, p, name, thrift.LIST, id, func() error {
		if err := p.WriteListBegin(ctx, thrift.STRING, len(items)); err != nil {
			return err
		}
		for _, v := range items {
			if err := p.WriteBinary(ctx, v); err != nil {
				return err
			}
		}
		return p.WriteListEnd(ctx)
	})
}

func writeStructList[T thrift.TStruct](ctx context.Context, p thrift.TProtocol, name string, id int16, items []T) error {
	return writeField(ctx, p, name, thrift.LIST, id, func() error {
		if err := p.WriteListBegin(ctx, thrift.STRUCT, len(items)); err != nil {
			return err
		}
		for _, v := range items {
			if err := v.Write(ctx, p); err != nil {
				return err
			}
		}
		return p.WriteListEnd(ctx)
	})
}

// readStruct walks the fields of a struct. field reads the value of a known
// field and reports false for fields to skip.
func readStruct(ctx context.Context, p thrift.TProtocol, field func(id int16, t thrift.TType) (bool, error)) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError("read struct begin error: ", err)
	}
	for {
		_, t, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError("read field begin error: ", err)
		}
		if t == thrift.STOP {
			break
		}
		ok, err := field(id, t)
		if err != nil {
			return thrift.PrependError("read field error: ", err)
		}
		if !ok {
			if err := p.Skip(ctx, t); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError("read struct end error: ", err)
	}
	return nil
}

func readStructList[T thrift.TStruct](ctx context.Context, p thrift.TProtocol, alloc func() T) ([]T, error) {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, thrift.PrependError("error reading list begin: ", err)
	}
	items := make([]T, 0, size)
	for i := 0; i < size; i++ {
		v := alloc()
		if err := v.Read(ctx, p); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := p.ReadListEnd(ctx); err != nil {
		return nil, thrift.PrependError("error reading list end: ", err)
	}
	return items, nil
}
