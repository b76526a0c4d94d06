package graph

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		props *Properties
		want  Kind
	}{
		{"nil properties", nil, KindUnknown},
		{"empty properties", &Properties{}, KindUnknown},
		{"middleware", &Properties{Type: "middleware"}, KindMiddleware},
		{"middleware wins over endpoint fields", &Properties{Type: "middleware", Endpoint: "/x", Method: "GET"}, KindMiddleware},
		{"complete endpoint", &Properties{Endpoint: "/x", Method: "GET"}, KindEndpoint},
		{"endpoint without method", &Properties{Endpoint: "/x"}, KindEndpoint},
		{"method without endpoint", &Properties{Method: "GET"}, KindEndpoint},
		{"other type", &Properties{Type: "database"}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.props); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindUnknown:    "unknown",
		KindMiddleware: "middleware",
		KindEndpoint:   "endpoint",
		KindInvalid:    "invalid",
		Kind(42):       "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestNode_GuardsOnNonMiddleware(t *testing.T) {
	n := endpoint("e", "", "/x", "GET")
	if g := n.Guards(PolicyStacked); g != nil {
		t.Errorf("Guards() = %v, want nil", g)
	}
}
