package label

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlowsTo(t *testing.T) {
	secret := Label{Confidentiality: TagSet{"secret"}}
	pub := PublicUntrusted()

	tests := []struct {
		name string
		from Label
		to   Label
		want bool
	}{
		{"public to public", pub, pub, true},
		{"secret to public denied", secret, pub, false},
		{"public to secret allowed", pub, secret, true},
		{"secret to itself", secret, secret, true},
		{
			name: "trusted data may flow to an untrusted target",
			from: Label{Integrity: TagSet{"signed"}},
			to:   Label{},
			want: true,
		},
		{
			name: "untrusted data may not flow to a trusted target",
			from: Label{},
			to:   Label{Integrity: TagSet{"signed"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.from.FlowsTo(tt.to))
		})
	}
}

func TestDowngrade(t *testing.T) {
	secret := Label{Confidentiality: TagSet{"secret", "topsecret"}, Integrity: TagSet{}}

	t.Run("no privilege changes nothing", func(t *testing.T) {
		p := Privilege{}
		got := p.Downgrade(secret)
		require.True(t, got.Equal(secret))
	})

	t.Run("declassify one tag", func(t *testing.T) {
		p := Privilege{Declassify: TagSet{"secret"}}
		got := p.Downgrade(secret)
		require.False(t, got.Confidentiality.Contains("secret"))
		require.True(t, got.Confidentiality.Contains("topsecret"))
	})

	t.Run("top privilege clears confidentiality entirely", func(t *testing.T) {
		got := TopPrivilege().Downgrade(secret)
		require.Empty(t, got.Confidentiality)
	})

	t.Run("endorse adds integrity tags", func(t *testing.T) {
		p := Privilege{Endorse: TagSet{"reviewed"}}
		got := p.Downgrade(Label{})
		require.True(t, got.Integrity.Contains("reviewed"))
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	l := Label{
		Confidentiality: TagSet{"b-tag", "a-tag", "a-tag"},
		Integrity:       TagSet{"z", "y"},
	}

	encoded := l.Encode()
	require.Equal(t, len(encoded), l.EncodedLen())

	decoded, ok := Decode(encoded)
	require.True(t, ok)
	require.True(t, l.Equal(decoded))

	// Encoding is canonical: differently-ordered, duplicate-containing
	// tag sets that denote the same label produce identical bytes.
	l2 := Label{
		Confidentiality: TagSet{"a-tag", "b-tag"},
		Integrity:       TagSet{"y", "z", "y"},
	}
	require.Equal(t, encoded, l2.Encode())
}

func TestPublicUntrustedIsBottom(t *testing.T) {
	pub := PublicUntrusted()
	require.Empty(t, pub.Confidentiality)
	require.Empty(t, pub.Integrity)
}
