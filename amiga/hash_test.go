package amiga

import "testing"

func TestHashNameKnownValues(t *testing.T) {
	if got := HashName("foo", false); got != 15 {
		t.Fatalf("HashName(foo) = %d, want 15", got)
	}
	if got := HashName("bar", false); got != 24 {
		t.Fatalf("HashName(bar) = %d, want 24", got)
	}
}

func TestCheckName(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{"amiga", false},
		{"foo/bar", true},
		{"a:b", true},
		{"", true},
	}
	for _, c := range cases {
		err := CheckName(c.name)
		if c.wantErr && err == nil {
			t.Errorf("CheckName(%q): want error, got nil", c.name)
		}
		if !c.wantErr && err != nil {
			t.Errorf("CheckName(%q): want no error, got %v", c.name, err)
		}
	}
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"//foo", []string{"foo"}},
		{"foo", []string{"foo"}},
		{"/a/b/c", []string{"a", "b", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := SplitPath(c.path)
		if len(got) != len(c.want) {
			t.Fatalf("SplitPath(%q) = %v, want %v", c.path, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("SplitPath(%q) = %v, want %v", c.path, got, c.want)
			}
		}
	}
}

func TestUpperByteInternational(t *testing.T) {
	if upperByte('a', false) != 'A' {
		t.Fatal("lowercase ascii not uppercased")
	}
	if upperByte(0xE0, false) != 0xE0 {
		t.Fatal("international byte uppercased without international mode")
	}
	if upperByte(0xE0, true) != 0xE0-0x20 {
		t.Fatal("international byte not uppercased in international mode")
	}
	if upperByte(0xF7, true) != 0xF7 {
		t.Fatal("0xF7 must not be folded even in international mode")
	}
}
