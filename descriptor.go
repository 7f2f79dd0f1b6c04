package beanwire

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// fieldOptions is the parsed form of a `bean:"N[,opt[,opt...]]"` struct
// tag: the field index plus any trailing options (spec.md §4.C).
type fieldOptions struct {
	index      int
	method     bool
	enumValues int
}

// parseFieldTag parses one `bean:"..."` tag value. The first comma-
// separated element is the mandatory field index; later elements are
// options, either a bare flag ("method") or a key=value pair
// ("enumvalues=12").
func parseFieldTag(tag string) (fieldOptions, bool, error) {
	if tag == "" || tag == "-" {
		return fieldOptions{}, false, nil
	}

	parts := strings.Split(tag, ",")
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fieldOptions{}, false, configErr(nil, "invalid bean tag %q: %v", tag, err)
	}

	opts := fieldOptions{index: idx}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "method":
			opts.method = true
		case strings.HasPrefix(p, "enumvalues="):
			n, err := strconv.Atoi(strings.TrimPrefix(p, "enumvalues="))
			if err != nil {
				return fieldOptions{}, false, configErr(nil, "invalid enumvalues in bean tag %q: %v", tag, err)
			}
			opts.enumValues = n
		case p == "":
			// tolerate a trailing comma
		default:
			return fieldOptions{}, false, configErr(nil, "unrecognized bean tag option %q in %q", p, tag)
		}
	}
	return opts, true, nil
}

// fieldDescriptor is one entry in a classDescriptor's frozen field table:
// a field's wire index, the wire variant it's encoded with, its accessor,
// and (for the variants that need one) its declared default element type
// - spec.md §4.C's "per-field: (field index, wire variant, default
// element type, accessor)".
type fieldDescriptor struct {
	index       int
	variant     wireVariant
	elem        reflect.Type
	goType      reflect.Type
	accessor    fieldAccessor
	enumValues  int
	listElemPtr bool // element type of a List/array of Externalizable is a pointer type
}

// classDescriptor is the frozen, cached field table for one record
// (struct) type - spec.md §4.C's "class descriptor", built lazily once
// per struct type and reused for every subsequent encode/decode of that
// type.
type classDescriptor struct {
	typ    reflect.Type
	fields []fieldDescriptor // sorted ascending by index
	byIdx  map[int]*fieldDescriptor
}

func (d *classDescriptor) fieldByIndex(idx int) (*fieldDescriptor, bool) {
	fd, ok := d.byIdx[idx]
	return fd, ok
}

var (
	descriptorMu    sync.RWMutex
	descriptorCache = map[reflect.Type]*classDescriptor{}
)

// getClassDescriptor returns the cached descriptor for t (a struct type,
// never a pointer), building it if this is the first time t has been
// seen. Per spec.md §4.C, concurrent callers racing to build the same
// type's descriptor for the first time may each build and discard their
// own copy rather than blocking on each other - the duplicate work is
// wasted but harmless, since the built descriptor is pure derived data
// keyed only by t. See DESIGN.md for why this is left as a documented
// race rather than serialized with a singleflight-style guard.
func getClassDescriptor(t reflect.Type) (*classDescriptor, error) {
	descriptorMu.RLock()
	d, ok := descriptorCache[t]
	descriptorMu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := buildClassDescriptor(t)
	if err != nil {
		return nil, err
	}

	descriptorMu.Lock()
	if existing, ok := descriptorCache[t]; ok {
		d = existing
	} else {
		descriptorCache[t] = d
	}
	descriptorMu.Unlock()

	log.Debugf("beanwire: built class descriptor for %s (%d fields)", t, len(d.fields))
	return d, nil
}

// buildClassDescriptor walks t's fields (including those promoted through
// embedding, spec.md §4.C's "walk the class and all superclasses"),
// parses each one's bean tag, resolves its wire variant through the type
// registry, and sorts the result by field index.
func buildClassDescriptor(t reflect.Type) (*classDescriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, configErr(t, "beanwire: %s is not a struct", t)
	}

	var fields []fieldDescriptor
	seen := map[int]string{}
	var walkErr error

	var walk func(t reflect.Type, index []int)
	walk = func(t reflect.Type, index []int) {
		for i := 0; i < t.NumField(); i++ {
			if walkErr != nil {
				return
			}
			sf := t.Field(i)
			path := append(append([]int{}, index...), i)

			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				if _, has := sf.Tag.Lookup("bean"); !has {
					walk(sf.Type, path)
					continue
				}
			}

			tag, has := sf.Tag.Lookup("bean")
			if !has {
				continue
			}
			opts, ok, err := parseFieldTag(tag)
			if err != nil {
				walkErr = err
				return
			}
			if !ok {
				continue
			}

			if prev, dup := seen[opts.index]; dup {
				walkErr = configErr(t, "field index %d used by both %s and %s", opts.index, prev, sf.Name)
				return
			}
			seen[opts.index] = sf.Name

			var acc fieldAccessor
			if opts.method {
				prop := strings.ToUpper(sf.Name[:1]) + sf.Name[1:]
				acc = methodAccessor{
					getterName: "Get" + prop,
					setterName: "Set" + prop,
				}
			} else {
				acc = directAccessor{index: append([]int{}, path...)}
			}

			fields = append(fields, fieldDescriptor{
				index:      opts.index,
				goType:     sf.Type,
				accessor:   acc,
				enumValues: opts.enumValues,
			})
		}
	}
	walk(t, nil)
	if walkErr != nil {
		return nil, walkErr
	}

	// Resolve each field's wire variant now that all fields are collected.
	for i := range fields {
		fd := &fields[i]
		resolved, err := variantForType(fd.goType, fieldOptions{enumValues: fd.enumValues})
		if err != nil {
			return nil, err
		}
		fd.variant = resolved.variant
		fd.elem = resolved.elem
		if resolved.variant == variantListOfExternalizables || resolved.variant == variantExternalizableArray || resolved.variant == variantExternalizableArrayArray {
			fd.listElemPtr = resolved.elem.Kind() == reflect.Ptr
		}
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].index < fields[j].index })

	byIdx := make(map[int]*fieldDescriptor, len(fields))
	for i := range fields {
		byIdx[fields[i].index] = &fields[i]
	}

	return &classDescriptor{typ: t, fields: fields, byIdx: byIdx}, nil
}
