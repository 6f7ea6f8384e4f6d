package utils

import (
	"reflect"
	"testing"
)

func TestRingBufferKeepsNewest(t *testing.T) {
	rb := NewRingBuffer[int](3)
	if _, ok := rb.Last(); ok {
		t.Fatal("empty buffer has no last item")
	}
	if got := rb.GetAll(); len(got) != 0 {
		t.Fatalf("empty buffer returned %v", got)
	}

	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}
	if rb.Len() != 3 || rb.Capacity() != 3 {
		t.Fatalf("len %d cap %d", rb.Len(), rb.Capacity())
	}
	if got := rb.GetAll(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Fatalf("GetAll = %v", got)
	}
	if got := rb.GetLatest(2); !reflect.DeepEqual(got, []int{4, 5}) {
		t.Fatalf("GetLatest(2) = %v", got)
	}
	if got := rb.GetLatest(10); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Fatalf("GetLatest(10) = %v", got)
	}
	if last, _ := rb.Last(); last != 5 {
		t.Fatalf("last %d", last)
	}

	rb.Clear()
	if rb.Len() != 0 {
		t.Fatal("clear kept items")
	}
}

func TestRingBufferDefaultCapacity(t *testing.T) {
	if NewRingBuffer[string](0).Capacity() != 128 {
		t.Fatal("non-positive capacity must fall back to the default")
	}
}
