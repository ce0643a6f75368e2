package dto

import "testing"

func TestPageQueryNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        PageQuery
		wantPage  int
		wantLimit int
	}{
		{"zero values", PageQuery{}, 1, 10},
		{"negative page", PageQuery{Page: -3, Limit: 5}, 1, 5},
		{"limit over cap", PageQuery{Page: 2, Limit: 500}, 2, 100},
		{"already sane", PageQuery{Page: 4, Limit: 25}, 4, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Normalize()
			if tc.in.Page != tc.wantPage || tc.in.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", tc.in.Page, tc.in.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
