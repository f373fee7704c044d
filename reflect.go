package binpack

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
)

var (
	derived    sync.Map // reflect.Type -> rcodec
	registered sync.Map // reflect.Type -> rcodec

	packerType   = reflect.TypeOf((*Packer)(nil)).Elem()
	unpackerType = reflect.TypeOf((*Unpacker)(nil)).Elem()
)

// rcodec packs reflect values. dec writes into a settable v.
type rcodec interface {
	enc(buf []byte, v reflect.Value) []byte
	dec(b []byte, v reflect.Value) ([]byte, bool)
	width() int
}

// Derive builds a codec for T from its shape: struct fields in declaration
// order, slices and maps with a u64 count, arrays without one, pointers as
// options. Fields tagged `binpack:"-"` are skipped. Interface types need a
// codec installed with Register, usually an Enum. Types whose pointer
// implements Unpacker (and that implement Packer) pack themselves.
//
// int and uint always take 8 bytes. A rune field is an int32 and gets no
// code point validation. Where that matters, give the field a named type
// and Register a codec built on Rune for it, or pack the struct with
// Struct and FieldOf over Rune:
//
//	type Letter rune
//
//	binpack.Register(binpack.Func(
//		func(b []byte) (Letter, []byte, bool) {
//			r, rest, ok := binpack.Rune{}.Decode(b)
//			return Letter(r), rest, ok
//		},
//		func(buf []byte, l Letter) []byte { return binpack.Rune{}.Encode(buf, rune(l)) },
//	))
//
// Derived codecs are cached per type.
func Derive[T any]() (Codec[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	rc, err := codecFor(t)
	if err != nil {
		return nil, err
	}
	return reflectCodec[T]{rc: rc}, nil
}

// MustDerive is like Derive but panics on error.
// Handy for package-level codec variables.
func MustDerive[T any]() Codec[T] {
	c, err := Derive[T]()
	if err != nil {
		panic(err)
	}
	return c
}

// Register installs c as the codec Derive uses for T wherever T appears.
// It is how interface enums become derivable. Register before the first
// Derive that reaches T; codecs already derived keep what they saw.
func Register[T any](c Codec[T]) {
	registered.Store(reflect.TypeOf((*T)(nil)).Elem(), typedR[T]{c: c})
}

type reflectCodec[T any] struct{ rc rcodec }

func (c reflectCodec[T]) Width() int { return c.rc.width() }

func (c reflectCodec[T]) Decode(b []byte) (T, []byte, bool) {
	var v T
	rest, ok := c.rc.dec(b, reflect.ValueOf(&v).Elem())
	if !ok {
		var zero T
		return zero, b, false
	}
	return v, rest, true
}

func (c reflectCodec[T]) Encode(buf []byte, v T) []byte {
	return c.rc.enc(buf, reflect.ValueOf(&v).Elem())
}

func codecFor(t reflect.Type) (rcodec, error) {
	if rc, ok := derived.Load(t); ok {
		return rc.(rcodec), nil
	}
	b := &builder{inProgress: make(map[reflect.Type]*lazyR)}
	rc, err := b.build(t, t.String())
	if err != nil {
		return nil, err
	}
	actual, _ := derived.LoadOrStore(t, rc)
	return actual.(rcodec), nil
}

type builder struct {
	// struct types currently being built, for self-referential types
	inProgress map[reflect.Type]*lazyR
}

func (b *builder) build(t reflect.Type, path string) (rcodec, error) {
	if rc, ok := registered.Load(t); ok {
		return rc.(rcodec), nil
	}
	if lz, ok := b.inProgress[t]; ok {
		return lz, nil
	}
	if rc, ok := derived.Load(t); ok {
		return rc.(rcodec), nil
	}
	if pt := reflect.PointerTo(t); pt.Implements(unpackerType) && (t.Implements(packerType) || pt.Implements(packerType)) {
		return packR{t: t}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolR{}, nil
	case reflect.Int8:
		return intR{size: 1}, nil
	case reflect.Int16:
		return intR{size: 2}, nil
	case reflect.Int32:
		return intR{size: 4}, nil
	case reflect.Int64, reflect.Int:
		return intR{size: 8}, nil
	case reflect.Uint8:
		return uintR{size: 1}, nil
	case reflect.Uint16:
		return uintR{size: 2}, nil
	case reflect.Uint32:
		return uintR{size: 4}, nil
	case reflect.Uint64, reflect.Uint:
		return uintR{size: 8}, nil
	case reflect.Float32:
		return floatR{size: 4}, nil
	case reflect.Float64:
		return floatR{size: 8}, nil
	case reflect.String:
		return stringR{}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return bytesR{}, nil
		}
		elem, err := b.build(t.Elem(), path+"[]")
		if err != nil {
			return nil, err
		}
		return sliceR{t: t, elem: elem}, nil
	case reflect.Array:
		elem, err := b.build(t.Elem(), path+"[]")
		if err != nil {
			return nil, err
		}
		return arrayR{n: t.Len(), elem: elem}, nil
	case reflect.Map:
		key, err := b.build(t.Key(), path+"[key]")
		if err != nil {
			return nil, err
		}
		val, err := b.build(t.Elem(), path+"[value]")
		if err != nil {
			return nil, err
		}
		return mapR{t: t, key: key, val: val}, nil
	case reflect.Pointer:
		elem, err := b.build(t.Elem(), "*"+path)
		if err != nil {
			return nil, err
		}
		return optionR{t: t, elem: elem}, nil
	case reflect.Struct:
		return b.buildStruct(t, path)
	case reflect.Interface:
		return nil, fmt.Errorf("binpack: cannot derive %s: interface %v has no registered codec", path, t)
	}
	return nil, fmt.Errorf("binpack: cannot derive %s: unsupported kind %v", path, t.Kind())
}

func (b *builder) buildStruct(t reflect.Type, path string) (rcodec, error) {
	lz := &lazyR{}
	b.inProgress[t] = lz
	defer delete(b.inProgress, t)

	sr := structR{}
	total := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Tag.Get("binpack") == "-" {
			continue
		}
		fpath := path + "." + sf.Name
		if !sf.IsExported() {
			return nil, fmt.Errorf("binpack: cannot derive %s: unexported field (tag it `binpack:\"-\"` to skip)", fpath)
		}
		fc, err := b.build(sf.Type, fpath)
		if err != nil {
			return nil, err
		}
		sr.fields = append(sr.fields, structField{index: i, c: fc})
		if w := fc.width(); w >= 0 && total >= 0 {
			total += w
		} else {
			total = -1
		}
	}
	sr.w = total
	lz.rc = sr
	return sr, nil
}

// lazyR stands in for a struct codec that is still being built.
type lazyR struct{ rc rcodec }

func (l *lazyR) enc(buf []byte, v reflect.Value) []byte       { return l.rc.enc(buf, v) }
func (l *lazyR) dec(b []byte, v reflect.Value) ([]byte, bool) { return l.rc.dec(b, v) }
func (l *lazyR) width() int                                   { return -1 }

type structField struct {
	index int
	c     rcodec
}

type structR struct {
	fields []structField
	w      int
}

func (s structR) width() int { return s.w }

func (s structR) enc(buf []byte, v reflect.Value) []byte {
	for _, f := range s.fields {
		buf = f.c.enc(buf, v.Field(f.index))
	}
	return buf
}

func (s structR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	// decode into a scratch value so a failure leaves v untouched
	tmp := reflect.New(v.Type()).Elem()
	rest := b
	for _, f := range s.fields {
		var ok bool
		if rest, ok = f.c.dec(rest, tmp.Field(f.index)); !ok {
			return b, false
		}
	}
	v.Set(tmp)
	return rest, true
}

type boolR struct{}

func (boolR) width() int { return 1 }
func (boolR) enc(buf []byte, v reflect.Value) []byte {
	return Bool{}.Encode(buf, v.Bool())
}
func (boolR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	x, rest, ok := Bool{}.Decode(b)
	if ok {
		v.SetBool(x)
	}
	return rest, ok
}

func appendUint(buf []byte, size int, x uint64) []byte {
	switch size {
	case 1:
		return append(buf, byte(x))
	case 2:
		return le.AppendUint16(buf, uint16(x))
	case 4:
		return le.AppendUint32(buf, uint32(x))
	}
	return le.AppendUint64(buf, x)
}

func readUint(b []byte, size int) (uint64, []byte, bool) {
	if len(b) < size {
		return 0, b, false
	}
	switch size {
	case 1:
		return uint64(b[0]), b[1:], true
	case 2:
		return uint64(le.Uint16(b)), b[2:], true
	case 4:
		return uint64(le.Uint32(b)), b[4:], true
	}
	return le.Uint64(b), b[8:], true
}

type intR struct{ size int }

func (r intR) width() int { return r.size }
func (r intR) enc(buf []byte, v reflect.Value) []byte {
	return appendUint(buf, r.size, uint64(v.Int()))
}
func (r intR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	u, rest, ok := readUint(b, r.size)
	if !ok {
		return b, false
	}
	var x int64
	switch r.size {
	case 1:
		x = int64(int8(u))
	case 2:
		x = int64(int16(u))
	case 4:
		x = int64(int32(u))
	default:
		x = int64(u)
	}
	if v.OverflowInt(x) {
		return b, false
	}
	v.SetInt(x)
	return rest, true
}

type uintR struct{ size int }

func (r uintR) width() int { return r.size }
func (r uintR) enc(buf []byte, v reflect.Value) []byte {
	return appendUint(buf, r.size, v.Uint())
}
func (r uintR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	u, rest, ok := readUint(b, r.size)
	if !ok || v.OverflowUint(u) {
		return b, false
	}
	v.SetUint(u)
	return rest, true
}

type floatR struct{ size int }

func (r floatR) width() int { return r.size }
func (r floatR) enc(buf []byte, v reflect.Value) []byte {
	if r.size == 4 {
		return le.AppendUint32(buf, math.Float32bits(float32(v.Float())))
	}
	return le.AppendUint64(buf, math.Float64bits(v.Float()))
}
func (r floatR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	u, rest, ok := readUint(b, r.size)
	if !ok {
		return b, false
	}
	if r.size == 4 {
		v.SetFloat(float64(math.Float32frombits(uint32(u))))
	} else {
		v.SetFloat(math.Float64frombits(u))
	}
	return rest, true
}

type stringR struct{}

func (stringR) width() int { return -1 }
func (stringR) enc(buf []byte, v reflect.Value) []byte {
	return String{}.Encode(buf, v.String())
}
func (stringR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	s, rest, ok := String{}.Decode(b)
	if ok {
		v.SetString(s)
	}
	return rest, ok
}

type bytesR struct{}

func (bytesR) width() int { return -1 }
func (bytesR) enc(buf []byte, v reflect.Value) []byte {
	return Bytes{}.Encode(buf, v.Bytes())
}
func (bytesR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	x, rest, ok := Bytes{}.Decode(b)
	if ok {
		v.SetBytes(x)
	}
	return rest, ok
}

type sliceR struct {
	t    reflect.Type
	elem rcodec
}

func (sliceR) width() int { return -1 }

func (s sliceR) enc(buf []byte, v reflect.Value) []byte {
	n := v.Len()
	buf = Uint64{}.Encode(buf, uint64(n))
	for i := 0; i < n; i++ {
		buf = s.elem.enc(buf, v.Index(i))
	}
	return buf
}

func (s sliceR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	w := s.elem.width()
	n, rest, ok := readLen(b, w)
	if !ok {
		return b, false
	}
	out := reflect.MakeSlice(s.t, 0, allocHint(n, len(rest), w))
	et := s.t.Elem()
	empty := 0
	for i := uint64(0); i < n; i++ {
		e := reflect.New(et).Elem()
		r, ok := s.elem.dec(rest, e)
		if !ok || !consumed(rest, r, &empty) {
			return b, false
		}
		rest = r
		out = reflect.Append(out, e)
	}
	v.Set(out)
	return rest, true
}

type arrayR struct {
	n    int
	elem rcodec
}

func (a arrayR) width() int {
	if a.n == 0 {
		return 0
	}
	if w := a.elem.width(); w >= 0 {
		return a.n * w
	}
	return -1
}

func (a arrayR) enc(buf []byte, v reflect.Value) []byte {
	for i := 0; i < a.n; i++ {
		buf = a.elem.enc(buf, v.Index(i))
	}
	return buf
}

func (a arrayR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	tmp := reflect.New(v.Type()).Elem()
	rest := b
	for i := 0; i < a.n; i++ {
		var ok bool
		if rest, ok = a.elem.dec(rest, tmp.Index(i)); !ok {
			return b, false
		}
	}
	v.Set(tmp)
	return rest, true
}

type mapR struct {
	t        reflect.Type
	key, val rcodec
}

func (mapR) width() int { return -1 }

func (m mapR) enc(buf []byte, v reflect.Value) []byte {
	buf = Uint64{}.Encode(buf, uint64(v.Len()))
	if v.Len() == 0 {
		return buf
	}
	type entry struct {
		enc []byte
		key reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		entries = append(entries, entry{enc: m.key.enc(nil, k), key: k})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].enc, entries[j].enc) < 0
	})
	for _, e := range entries {
		buf = append(buf, e.enc...)
		buf = m.val.enc(buf, v.MapIndex(e.key))
	}
	return buf
}

func (m mapR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	w := -1
	if kw, vw := m.key.width(), m.val.width(); kw >= 0 && vw >= 0 {
		w = kw + vw
	}
	n, rest, ok := readLen(b, w)
	if !ok {
		return b, false
	}
	out := reflect.MakeMapWithSize(m.t, allocHint(n, len(rest), w))
	empty := 0
	for i := uint64(0); i < n; i++ {
		k := reflect.New(m.t.Key()).Elem()
		r, ok := m.key.dec(rest, k)
		if !ok {
			return b, false
		}
		e := reflect.New(m.t.Elem()).Elem()
		if r, ok = m.val.dec(r, e); !ok || !consumed(rest, r, &empty) {
			return b, false
		}
		rest = r
		out.SetMapIndex(k, e)
	}
	v.Set(out)
	return rest, true
}

type optionR struct {
	t    reflect.Type
	elem rcodec
}

func (optionR) width() int { return -1 }

func (o optionR) enc(buf []byte, v reflect.Value) []byte {
	if v.IsNil() {
		return append(buf, 0)
	}
	return o.elem.enc(append(buf, 1), v.Elem())
}

func (o optionR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	if len(b) < 1 {
		return b, false
	}
	switch b[0] {
	case 0:
		v.SetZero()
		return b[1:], true
	case 1:
		p := reflect.New(o.t.Elem())
		rest, ok := o.elem.dec(b[1:], p.Elem())
		if !ok {
			return b, false
		}
		v.Set(p)
		return rest, true
	}
	return b, false
}

// packR defers to the type's own Pack and Unpack methods.
type packR struct{ t reflect.Type }

func (packR) width() int { return -1 }

func (p packR) enc(buf []byte, v reflect.Value) []byte {
	if pk, ok := v.Interface().(Packer); ok {
		return pk.Pack(buf)
	}
	pv := reflect.New(p.t)
	pv.Elem().Set(v)
	return pv.Interface().(Packer).Pack(buf)
}

func (p packR) dec(b []byte, v reflect.Value) ([]byte, bool) {
	pv := reflect.New(p.t)
	rest, ok := pv.Interface().(Unpacker).Unpack(b)
	if !ok {
		return b, false
	}
	v.Set(pv.Elem())
	return rest, true
}

// typedR adapts a registered Codec[T] to reflect values.
type typedR[T any] struct{ c Codec[T] }

func (r typedR[T]) width() int { return widthOf(r.c) }

func (r typedR[T]) enc(buf []byte, v reflect.Value) []byte {
	var x T
	reflect.ValueOf(&x).Elem().Set(v)
	return r.c.Encode(buf, x)
}

func (r typedR[T]) dec(b []byte, v reflect.Value) ([]byte, bool) {
	x, rest, ok := r.c.Decode(b)
	if !ok {
		return b, false
	}
	v.Set(reflect.ValueOf(&x).Elem())
	return rest, true
}
