package domain

import (
	"reflect"
	"testing"
)

func TestIndexMatch_LongestFirst(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"cat", "category", "dog"})

	matched := ix.Match(1, "this category exists")
	if !reflect.DeepEqual(matched, []string{"category", "cat"}) {
		t.Errorf("Expected [category cat], got %v", matched)
	}
}

func TestIndexMatch_SubstringNotWordBounded(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"cat"})

	if matched := ix.Match(1, "concatenate"); len(matched) != 1 {
		t.Errorf("Expected substring match inside a word, got %v", matched)
	}
}

func TestIndexMatch_CaseSensitive(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"cat"})

	if matched := ix.Match(1, "Cat pictures"); matched != nil {
		t.Errorf("Expected no match for different case, got %v", matched)
	}
}

func TestIndexMatch_ChatIsolation(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"hello"})

	if matched := ix.Match(2, "hello there"); matched != nil {
		t.Errorf("Expected no match in another chat, got %v", matched)
	}
}

func TestIndexReplace_EmptyRemovesChat(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"hello"})
	ix.Replace(1, nil)

	if triggers := ix.Triggers(1); triggers != nil {
		t.Errorf("Expected no triggers after empty replace, got %v", triggers)
	}
}

func TestIndexReplaceAll(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"stale"})

	ix.ReplaceAll([]ChatTrigger{
		{Trigger: "hi", ChatID: 1},
		{Trigger: "longer", ChatID: 1},
		{Trigger: "other", ChatID: 2},
	})

	if got := ix.Triggers(1); !reflect.DeepEqual(got, []string{"longer", "hi"}) {
		t.Errorf("Expected [longer hi], got %v", got)
	}
	if got := ix.Triggers(2); !reflect.DeepEqual(got, []string{"other"}) {
		t.Errorf("Expected [other], got %v", got)
	}
}

func TestIndexTriggers_ReturnsCopy(t *testing.T) {
	ix := NewTriggerIndex()
	ix.Replace(1, []string{"aa", "bb"})

	got := ix.Triggers(1)
	got[0] = "mutated"

	if again := ix.Triggers(1); again[0] == "mutated" {
		t.Error("Expected Triggers to return a copy")
	}
}
