package model

import "context"

// FieldReader looks up field metadata for a list, restricted to names.
type FieldReader interface {
	Fields(ctx context.Context, listTitle string, names []string) ([]FieldDescriptor, error)
}

// ItemReader reads up to top items of a list, projected to names.
type ItemReader interface {
	Items(ctx context.Context, listTitle string, names []string, top int) ([]Row, error)
}

// ListReader is the read contract the dashboard needs from a remote list.
type ListReader interface {
	FieldReader
	ItemReader
}
