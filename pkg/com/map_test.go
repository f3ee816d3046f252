package com

import (
	"fmt"
	"sync/atomic"
	"testing"
)

type testClient struct {
	id int
	c  int32
}

func (t *testClient) Id() string   { return fmt.Sprintf("%v", t.id) }
func (t *testClient) Disconnect()  {}
func (t *testClient) change(n int) { atomic.AddInt32(&t.c, int32(n)) }

func TestPointerValue(t *testing.T) {
	m := NewNetMap[string, *testClient]()
	c := testClient{id: 1}
	m.Add(&c)
	fc, _ := m.FindBy(func(c *testClient) bool { return c.id == 1 })
	c.change(100)
	fc2, _ := m.Find(fc.Id())

	expected := c.c == fc.c && c.c == fc2.c
	if !expected {
		t.Errorf("not expected change, o: %v != %v != %v", c.c, fc.c, fc2.c)
	}
}

func TestRemove(t *testing.T) {
	m := NewNetMap[string, *testClient]()
	c := testClient{id: 7}
	m.Add(&c)
	if !m.Has(c.Id()) {
		t.Errorf("no client %v, but should be", c.Id())
	}
	m.Remove(&c)
	if m.Has(c.Id()) {
		t.Errorf("client %v, but should not be", c.Id())
	}
	// removing twice is a no-op
	m.Remove(&c)
}
