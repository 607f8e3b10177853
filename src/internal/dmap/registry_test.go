package dmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistryHasListingCodes(t *testing.T) {
	reg := DefaultRegistry()
	for _, code := range []string{"mstt", "muty", "mtco", "mrco", "mlcl", "mlit", "miid", "minm", "mper", "mimc", "apso", "aply", "mupd", "musr", "mudl", "mlog", "mlid", "msrv", "mccr", "mdcl", "mcnm", "mcna", "mcty"} {
		_, ok := reg.Kind(code)
		assert.True(t, ok, "default registry missing code %q", code)
	}
}

func TestRegistryCodesPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("bbbb", "b", KindUint8)
	r.Register("aaaa", "a", KindUint8)
	assert.Equal(t, []string{"bbbb", "aaaa"}, r.Codes())
}
