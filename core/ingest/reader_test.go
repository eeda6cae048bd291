package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestReadRows(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		want    []Row
		wantErr bool
	}{
		{
			name: "headers and values are trimmed",
			src:  csvSrc(" name , email ", " Alice ,  alice@test.cd"),
			want: []Row{{"name": "Alice", "email": "alice@test.cd"}},
		},
		{
			name: "short rows are padded with empty values",
			src:  csvSrc("name,email,role", "Alice"),
			want: []Row{{"name": "Alice", "email": "", "role": ""}},
		},
		{
			name: "extra values beyond the header are dropped",
			src:  csvSrc("name,email", "Alice,alice@test.cd,student,whoops"),
			want: []Row{{"name": "Alice", "email": "alice@test.cd"}},
		},
		{
			name: "header only yields zero rows",
			src:  csvSrc("name,email"),
			want: []Row{},
		},
		{
			name: "empty input yields zero rows",
			src:  Source{Data: []byte{}},
			want: []Row{},
		},
		{
			name: "row order is preserved",
			src:  csvSrc("name", "C", "A", "B"),
			want: []Row{{"name": "C"}, {"name": "A"}, {"name": "B"}},
		},
		{
			name:    "broken quoting fails the whole input",
			src:     csvSrc("name,email", `"unclosed,alice@test.cd`),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRows(tt.src)
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("ReadRows() error = %v, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadRows() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadRows_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(path, []byte("name,email\nAlice,alice@test.cd\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(Source{Path: path})
	if err != nil {
		t.Fatalf("ReadRows() unexpected error = %v", err)
	}
	want := []Row{{"name": "Alice", "email": "alice@test.cd"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadRows() = %v, want %v", rows, want)
	}

	// the path takes precedence over inline data
	rows, err = ReadRows(Source{Path: path, Data: []byte("name\nBob")})
	if err != nil {
		t.Fatalf("ReadRows() unexpected error = %v", err)
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadRows() = %v, want %v", rows, want)
	}

	var perr *ParseError
	if _, err = ReadRows(Source{Path: filepath.Join(t.TempDir(), "nope.csv")}); !errors.As(err, &perr) {
		t.Errorf("ReadRows() error = %v, want *ParseError", err)
	}
}
