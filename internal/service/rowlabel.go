package service

import "strings"

// RowLabel converts a zero-based row index to a label: 0 → A, 25 → Z,
// 26 → AA.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []byte
	for {
		res = append(res, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// normalizeRowLabel keeps ASCII letters only, upper-cased.
func normalizeRowLabel(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	return b.String()
}
