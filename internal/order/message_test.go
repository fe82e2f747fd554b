package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/haikalarif/portofolio-freelance/internal/format"
)

func TestComputeTotal(t *testing.T) {
	t.Parallel()

	decls := sampleDecls()
	const base = int64(1500000)

	require.Equal(t, base, ComputeTotal(base, nil))
	require.Equal(t, base, ComputeTotal(base, []AddonEntry{}))

	// every subset of the catalog
	for mask := 0; mask < 1<<len(decls); mask++ {
		reg := NewRegistry(decls)
		want := base
		for i, d := range decls {
			if mask&(1<<i) != 0 {
				reg.Toggle(i)
				want += d.Price
			}
		}
		require.Equal(t, want, ComputeTotal(base, reg.Selected()), "mask %b", mask)

		// order does not matter
		sel := reg.Selected()
		for l, r := 0, len(sel)-1; l < r; l, r = l+1, r-1 {
			sel[l], sel[r] = sel[r], sel[l]
		}
		require.Equal(t, want, ComputeTotal(base, sel))
	}
}

func TestComputeTotalIgnoresUnselected(t *testing.T) {
	t.Parallel()

	entries := NewRegistry(sampleDecls()).Entries()
	require.Equal(t, int64(10), ComputeTotal(10, entries))
}

func TestComposeWithoutAddons(t *testing.T) {
	t.Parallel()

	msg := Compose("Paket A", 500000, nil, 500000)

	want := "Halo, saya tertarik memesan:\n\n" +
		"*Paket:* Paket A\n" +
		"*Harga Paket:* Rp 500.000\n" +
		"\n*Total Estimasi:* Rp 500.000\n" +
		"\nMohon informasi lebih lanjut. Terima kasih!"
	require.Equal(t, want, msg)
	require.Contains(t, msg, "Paket A")
	require.Equal(t, 2, strings.Count(msg, "Rp 500.000"))
	require.NotContains(t, msg, "Add-On")
}

func TestComposeWithAddons(t *testing.T) {
	t.Parallel()

	addons := []AddonEntry{{ID: "seo", Name: "SEO", Price: 200000, Selected: true}}
	msg := Compose("Paket B", 1000000, addons, 1200000)

	want := "Halo, saya tertarik memesan:\n\n" +
		"*Paket:* Paket B\n" +
		"*Harga Paket:* Rp 1.000.000\n" +
		"\n*Add-On yang dipilih:*\n" +
		"✓ SEO (Rp 200.000)\n" +
		"\n*Total Estimasi:* Rp 1.200.000\n" +
		"\nMohon informasi lebih lanjut. Terima kasih!"
	require.Equal(t, want, msg)

	var addonLine, totalLine string
	for _, line := range strings.Split(msg, "\n") {
		if strings.Contains(line, "SEO") {
			addonLine = line
		}
		if strings.HasPrefix(line, "*Total Estimasi:*") {
			totalLine = line
		}
	}
	require.Contains(t, addonLine, "Rp 200.000")
	require.Contains(t, totalLine, "Rp 1.200.000")
}

func TestComposeKeepsAddonOrder(t *testing.T) {
	t.Parallel()

	addons := []AddonEntry{
		{Name: "Zeta", Price: 1000},
		{Name: "Alpha", Price: 2000},
	}
	msg := Compose("X", 0, addons, 3000)
	require.Less(t, strings.Index(msg, "Zeta"), strings.Index(msg, "Alpha"))
}

func TestComposeIsDeterministicAndUnescaped(t *testing.T) {
	t.Parallel()

	addons := []AddonEntry{{Name: "<b>Logo</b> & Brand", Price: 150000}}
	a := Compose("Paket \"Pro\"", 2000000, addons, 2150000)
	b := Compose("Paket \"Pro\"", 2000000, addons, 2150000)
	require.Equal(t, a, b)
	require.Contains(t, a, "<b>Logo</b> & Brand")
	require.Contains(t, a, "Paket \"Pro\"")
}

func TestComposerUsesFormatter(t *testing.T) {
	t.Parallel()

	c := Composer{Money: format.New(language.English, "IDR")}
	msg := c.Compose("Paket A", 500000, nil, 500000)
	require.Contains(t, msg, "*Harga Paket:* IDR 500,000")
}
