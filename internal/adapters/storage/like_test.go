package storage

import "testing"

// TestContainsPattern verifies LIKE wildcards in user input are matched literally.
func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asha", `%asha%`},
		{"_", `%\_%`},
		{"100%", `%100\%%`},
		{`a\b`, `%a\\b%`},
		{"", `%%`},
	}
	for _, tt := range tests {
		if got := ContainsPattern(tt.in); got != tt.want {
			t.Errorf("ContainsPattern(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestContainsPattern_SQLite verifies the escape clause against a real engine.
func TestContainsPattern_SQLite(t *testing.T) {
	db := openTestDB(t)
	for _, stmt := range []string{
		"CREATE TABLE name (v TEXT)",
		"INSERT INTO name (v) VALUES ('asha'), ('bilal_khan'), ('50% off'), ('back\\slash')",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}

	tests := []struct {
		q    string
		want int
	}{
		{"_", 1},
		{"%", 1},
		{`\`, 1},
		{"a", 3},
		{"zz", 0},
	}
	for _, tt := range tests {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM name WHERE v LIKE ? ESCAPE '\'`, ContainsPattern(tt.q)).Scan(&n); err != nil {
			t.Fatalf("query %q: %v", tt.q, err)
		}
		if n != tt.want {
			t.Errorf("search %q matched %d rows, want %d", tt.q, n, tt.want)
		}
	}
}
