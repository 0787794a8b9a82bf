package plonk

import (
	"runtime/debug"

	"github.com/consensys/gnark"
)

var (
	Version            = "v0.0.0-in-progress"
	GnarkCryptoVersion = "v0.14.0"
)

const gnarkCryptoModule = "github.com/consensys/gnark-crypto"

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// CollaboratorVersion reports the gnark and gnark-crypto versions linked into
// the binary. The gnark-crypto version comes from the build info when
// available and otherwise falls back to the pinned GnarkCryptoVersion.
func CollaboratorVersion() string {
	crypto := GnarkCryptoVersion
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == gnarkCryptoModule {
				crypto = dep.Version
				break
			}
		}
	}
	return "gnark v" + gnark.Version.String() + ", gnark-crypto " + crypto
}
