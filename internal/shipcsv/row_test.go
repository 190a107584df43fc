package shipcsv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "points array",
			line: `A1,path,true,10,20,,x,y,z,a,b,c,[{"x":1,"y":2,"label":"nose"}]` + "\n",
			want: []string{"A1", "path", "true", "10", "20", "", "x", "y", "z", "a", "b", "c", `[{"x":1,"y":2,"label":"nose"}]`},
		},
		{
			name: "multiple points keep commas",
			line: `S,p,[{"x": 1, "y": 2}, {"x": 3, "y": 4}],end`,
			want: []string{"S", "p", `[{"x": 1, "y": 2}, {"x": 3, "y": 4}]`, "end"},
		},
		{
			name: "empty trailing fields",
			line: "a,,b,\n",
			want: []string{"a", "", "b", ""},
		},
		{
			name: "crlf terminator",
			line: "a,[]\r\n",
			want: []string{"a", "[]"},
		},
		{
			name: "nested bracket ends span early",
			line: "a,[[1,2],3],b",
			want: []string{"a", "[[1,2]", "3]", "b"},
		},
		{
			name: "non utf8 bytes",
			line: "a\xff,b\n",
			want: []string{"a\xff", "b"},
		},
		{
			name: "no newline",
			line: "only",
			want: []string{"only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitRow(tt.line)); diff != "" {
				t.Errorf("SplitRow(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestSplitRowFieldCount(t *testing.T) {
	span := `[{"x":1,"y":2,"label":"a"},{"x":3,"y":4,"label":"b"}]`
	for _, prefix := range []string{"", "a,", "a,b,c,"} {
		line := prefix + span + ",tail\n"
		fields := SplitRow(line)
		outside := strings.Count(prefix, ",") + 1
		require.Len(t, fields, outside+1)
		assert.Equal(t, span, fields[len(fields)-2])
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Kind
	}{
		{"\n", KindPassthrough},
		{"   \n", KindPassthrough},
		{"# comment, with commas\n", KindPassthrough},
		{"  # indented comment\n", KindPassthrough},
		{"ship_ID,sprite_path,sprite_exists\n", KindHeader},
		{"A1,path,true\n", KindData},
	}
	for _, tt := range tests {
		kind, fields := Classify(tt.line)
		assert.Equal(t, tt.want, kind, "line %q", tt.line)
		if kind == KindPassthrough {
			assert.Nil(t, fields)
		} else {
			assert.NotEmpty(t, fields)
		}
	}
}

func TestJoinAndPad(t *testing.T) {
	fields := Pad([]string{"a", "b"}, 4)
	require.Len(t, fields, 4)
	assert.Equal(t, "a,b,,\n", Join(fields))
	assert.Len(t, Pad(make([]string, 15), NumColumns), 15)
	assert.Equal(t, "A1", ShipID([]string{"  A1 ", "x"}))
	assert.Equal(t, "", ShipID(nil))
}

func TestReadWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	content := "# c\nship_ID,a\n\nA1,b\nB2,c"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"# c\n", "ship_ID,a\n", "\n", "A1,b\n", "B2,c"}, lines); diff != "" {
		t.Fatalf("ReadLines mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, WriteLines(path, lines))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	_, err = ReadLines(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadLinesNormalizesLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	require.NoError(t, os.WriteFile(path, []byte("# c\r\nship_ID,a\r\n\r\nA1,[]\rB2,x"), 0644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"# c\n", "ship_ID,a\n", "\n", "A1,[]\n", "B2,x"}, lines); diff != "" {
		t.Fatalf("ReadLines mismatch (-want +got):\n%s", diff)
	}
}
