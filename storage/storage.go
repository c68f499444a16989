// Package storage persists resource state between runs.
//
// State is stored per project as one record per realized resource instance,
// plus the order the instances were applied in. The apply order is what a
// destroy later walks in reverse.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// The Backend is used for persisting key-value data.
type Backend interface {
	// Put creates or updates a key.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the given key. Returns ErrNotFound if the given key does
	// not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete deletes a key. Returns ErrNotFound if the given key does not
	// exist.
	Delete(ctx context.Context, key string) error

	// Scan returns a key-value map of all keys matching the given prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)

	// Close releases all resources held by the backend.
	Close() error
}

// A Record is the persisted state of a single realized resource instance.
type Record struct {
	// Address of the instance, such as aws_subnet.private[0].
	Address string `json:"address"`

	// Type is the resource type name, used to select the definition struct
	// when decoding Def.
	Type string `json:"type"`

	// Hash of the inputs the instance was realized with. Compared against
	// the hash of the declared inputs to decide whether an update is
	// needed.
	Hash string `json:"hash"`

	// Def is the marshalled definition, inputs and outputs. Secret fields
	// are masked before the record is stored.
	Def json.RawMessage `json:"def"`

	// Deps contains the addresses of the instances this one references.
	Deps []string `json:"deps,omitempty"`
}

// KV stores project state in a key-value backend.
type KV struct {
	Backend Backend
}

func resourceKey(project, address string) string {
	return fmt.Sprintf("%s/resources/%s", project, address)
}

func orderKey(project string) string {
	return fmt.Sprintf("%s/meta/order", project)
}

// PutRecord creates or updates the record for a resource instance.
func (kv *KV) PutRecord(ctx context.Context, project string, rec Record) error {
	j, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	if err := kv.Backend.Put(ctx, resourceKey(project, rec.Address), j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// GetRecord returns the record for a single resource instance. Returns
// ErrNotFound if no record exists.
func (kv *KV) GetRecord(ctx context.Context, project, address string) (Record, error) {
	data, err := kv.Backend.Get(ctx, resourceKey(project, address))
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Wrap(err, "unmarshal record")
	}
	return rec, nil
}

// DeleteRecord deletes the record for a resource instance. Returns
// ErrNotFound if no record exists.
func (kv *KV) DeleteRecord(ctx context.Context, project, address string) error {
	return kv.Backend.Delete(ctx, resourceKey(project, address))
}

// ListRecords returns all records for a project, keyed by address.
func (kv *KV) ListRecords(ctx context.Context, project string) (map[string]Record, error) {
	values, err := kv.Backend.Scan(ctx, project+"/resources")
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	out := make(map[string]Record, len(values))
	for _, v := range values {
		var rec Record
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, errors.Wrap(err, "unmarshal record")
		}
		out[rec.Address] = rec
	}
	return out, nil
}

// PutOrder records the apply order for a project.
func (kv *KV) PutOrder(ctx context.Context, project string, order []string) error {
	j, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal order")
	}
	if err := kv.Backend.Put(ctx, orderKey(project), j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// GetOrder returns the recorded apply order for a project. Returns no
// addresses if no order has been recorded.
func (kv *KV) GetOrder(ctx context.Context, project string) ([]string, error) {
	data, err := kv.Backend.Get(ctx, orderKey(project))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	var order []string
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, errors.Wrap(err, "unmarshal order")
	}
	return order, nil
}

// Close closes the underlying backend.
func (kv *KV) Close() error {
	return kv.Backend.Close()
}
