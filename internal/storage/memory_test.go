package storage

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryStoreRecordsAndBlobsAreSeparate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.PutRecord(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put record: %v", err)
	}
	if _, ok, _ := s.GetBlob(ctx, "k"); ok {
		t.Error("record key must not be visible as a blob")
	}
	data, ok, err := s.GetRecord(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get record: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("record data: %s", data)
	}

	if _, ok, _ := s.GetRecord(ctx, "missing"); ok {
		t.Error("missing key must report absent, not error")
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	original := []byte("abc")
	if err := s.PutBlob(ctx, "b", original); err != nil {
		t.Fatalf("put blob: %v", err)
	}
	original[0] = 'x'

	data, _, _ := s.GetBlob(ctx, "b")
	if string(data) != "abc" {
		t.Errorf("stored blob aliased the caller's slice: %s", data)
	}
	data[0] = 'y'
	again, _, _ := s.GetBlob(ctx, "b")
	if string(again) != "abc" {
		t.Errorf("returned blob aliased the stored slice: %s", again)
	}
}

func TestMemoryStoreListKeysSortedByPrefix(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, k := range []string{"email_status.u2", "email_status.u1", "email_config.u1"} {
		if err := s.PutRecord(ctx, k, []byte("{}")); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	keys, err := s.ListKeys(ctx, "email_status.")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"email_status.u1", "email_status.u2"}) {
		t.Errorf("keys: %v", keys)
	}
}

func TestSanitizeKeyPart(t *testing.T) {
	cases := map[string]string{
		"order.pdf":          "order.pdf",
		"my invoice (1).pdf": "my_invoice__1_.pdf",
		"a/b\\c:d.pdf":       "a_b_c_d.pdf",
		"Ünïcode.pdf":        "_n_code.pdf",
	}
	for in, want := range cases {
		if got := SanitizeKeyPart(in); got != want {
			t.Errorf("SanitizeKeyPart(%q) = %q, want %q", in, got, want)
		}
	}
}
