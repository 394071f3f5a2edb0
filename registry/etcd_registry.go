// Package registry provides the etcd-based implementation of the Registry
// interface.
//
// etcd is a distributed key-value store that provides strong consistency
// (Raft protocol). Here it's used as a durable "address book":
//
//	Key:   /miners/servers/{Name}/{Addr}
//	Value: JSON-encoded ServerBookmark
//
// Unlike a service registry, entries carry no TTL lease — a bookmark
// survives until the user explicitly removes it, since it is not a proxy
// for a live process's heartbeat.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdRegistry implements Registry using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client
}

// NewEtcdRegistry creates a new registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register stores bookmark in etcd under its name and address, with no
// lease — it persists until explicitly deregistered.
func (r *EtcdRegistry) Register(bookmark ServerBookmark) error {
	ctx := context.TODO()

	val, err := json.Marshal(bookmark)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, "/miners/servers/"+bookmark.Name+"/"+bookmark.Addr(), string(val))
	return err
}

// Deregister removes a bookmark from etcd.
func (r *EtcdRegistry) Deregister(name string, addr string) error {
	ctx := context.TODO()
	_, err := r.client.Delete(ctx, "/miners/servers/"+name+"/"+addr)
	return err
}

// Watch monitors a bookmark-name prefix in etcd and emits the updated
// bookmark list whenever it changes (new saves, removals).
func (r *EtcdRegistry) Watch(name string) <-chan []ServerBookmark {
	ctx := context.TODO()
	ch := make(chan []ServerBookmark, 1)
	prefix := "/miners/servers/" + name + "/"

	go func() {
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			bookmarks, _ := r.Discover(name)
			ch <- bookmarks
		}
	}()

	return ch
}

// Discover returns all currently saved bookmarks under name.
func (r *EtcdRegistry) Discover(name string) ([]ServerBookmark, error) {
	ctx := context.TODO()
	prefix := "/miners/servers/" + name + "/"

	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	bookmarks := make([]ServerBookmark, 0)
	for _, kv := range resp.Kvs {
		var bookmark ServerBookmark
		if err := json.Unmarshal(kv.Value, &bookmark); err != nil {
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}
