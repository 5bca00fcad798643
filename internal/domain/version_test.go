package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	t.Run("Should parse plain version", func(t *testing.T) {
		version, err := ParseVersion("1.2.3")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), version.Major())
		assert.Equal(t, uint64(2), version.Minor())
		assert.Equal(t, uint64(3), version.Patch())
		assert.False(t, version.IsPrerelease())
	})
	t.Run("Should parse prerelease version", func(t *testing.T) {
		version, err := ParseVersion("1.2.3-rc.4")
		require.NoError(t, err)
		tag, count := version.Prerelease()
		assert.Equal(t, "rc", tag)
		assert.Equal(t, uint64(4), count)
		assert.True(t, version.IsPrerelease())
	})
	t.Run("Should parse build metadata", func(t *testing.T) {
		version, err := ParseVersion("1.2.3-alpha.1+feature.branch")
		require.NoError(t, err)
		assert.Equal(t, "feature.branch", version.Metadata())
	})
	t.Run("Should return error for malformed strings", func(t *testing.T) {
		for _, s := range []string{"", "invalid", "1.2", "1.2.3.4", "v1.2.3", "1.2.3-rc"} {
			_, err := ParseVersion(s)
			assert.ErrorIs(t, err, ErrMalformedVersion, "input %q", s)
		}
	})
	t.Run("Should reject zero prerelease counter", func(t *testing.T) {
		_, err := ParseVersion("1.2.3-rc.0")
		assert.ErrorIs(t, err, ErrMalformedVersion)
	})
	t.Run("Should round-trip through String", func(t *testing.T) {
		for _, s := range []string{"0.0.0", "1.2.3", "1.2.3-rc.1", "10.20.30-alpha.5+dev.branch"} {
			version, err := ParseVersion(s)
			require.NoError(t, err)
			assert.Equal(t, s, version.String())
		}
	})
}

func TestVersion_Bump(t *testing.T) {
	t.Run("Should bump major and reset lower components", func(t *testing.T) {
		version := MustParseVersion("1.5.8").Bump(ChangeMajor)
		assert.Equal(t, "2.0.0", version.String())
	})
	t.Run("Should bump minor and reset patch", func(t *testing.T) {
		version := MustParseVersion("1.5.8").Bump(ChangeMinor)
		assert.Equal(t, "1.6.0", version.String())
	})
	t.Run("Should bump patch", func(t *testing.T) {
		version := MustParseVersion("1.5.8").Bump(ChangePatch)
		assert.Equal(t, "1.5.9", version.String())
	})
	t.Run("Should strip prerelease and metadata when bumping", func(t *testing.T) {
		version := MustParseVersion("1.5.8-rc.3+branch").Bump(ChangePatch)
		assert.Equal(t, "1.5.9", version.String())
	})
	t.Run("Should panic when bumping by none", func(t *testing.T) {
		assert.Panics(t, func() {
			MustParseVersion("1.0.0").Bump(ChangeNone)
		})
	})
}

func TestVersion_BumpPrerelease(t *testing.T) {
	t.Run("Should increment counter when tag matches", func(t *testing.T) {
		version := MustParseVersion("1.2.3-rc.1").BumpPrerelease("rc")
		assert.Equal(t, "1.2.3-rc.2", version.String())
	})
	t.Run("Should restart counter when tag differs", func(t *testing.T) {
		version := MustParseVersion("1.2.3-rc.4").BumpPrerelease("alpha")
		assert.Equal(t, "1.2.3-alpha.1", version.String())
	})
	t.Run("Should start counter at one for final releases", func(t *testing.T) {
		version := MustParseVersion("1.2.3").BumpPrerelease("rc")
		assert.Equal(t, "1.2.3-rc.1", version.String())
	})
}

func TestVersion_Release(t *testing.T) {
	t.Run("Should strip prerelease and metadata", func(t *testing.T) {
		version := MustParseVersion("1.2.3-rc.4+branch").Release()
		assert.Equal(t, "1.2.3", version.String())
	})
}

func TestVersion_Compare(t *testing.T) {
	t.Run("Should order by release components", func(t *testing.T) {
		assert.True(t, MustParseVersion("1.2.3").Less(MustParseVersion("1.2.4")))
		assert.True(t, MustParseVersion("1.2.3").Less(MustParseVersion("1.3.0")))
		assert.True(t, MustParseVersion("1.2.3").Less(MustParseVersion("2.0.0")))
	})
	t.Run("Should sort prereleases before the final release", func(t *testing.T) {
		assert.True(t, MustParseVersion("1.2.3-rc.1").Less(MustParseVersion("1.2.3")))
		assert.True(t, MustParseVersion("1.2.2").Less(MustParseVersion("1.2.3-rc.1")))
	})
	t.Run("Should order prereleases by counter", func(t *testing.T) {
		assert.True(t, MustParseVersion("1.2.3-rc.1").Less(MustParseVersion("1.2.3-rc.2")))
	})
	t.Run("Should ignore build metadata", func(t *testing.T) {
		a := MustParseVersion("1.2.3+aaa")
		b := MustParseVersion("1.2.3+zzz")
		assert.Equal(t, 0, a.Compare(b))
	})
}

func TestVersion_Render(t *testing.T) {
	t.Run("Should render semver flavor", func(t *testing.T) {
		out, err := MustParseVersion("1.2.3-rc.4+branch").Render(FlavorSemver)
		require.NoError(t, err)
		assert.Equal(t, "1.2.3-rc.4+branch", out)
	})
	t.Run("Should render git-tag flavor with v prefix", func(t *testing.T) {
		out, err := MustParseVersion("1.2.3").Render(FlavorGitTag)
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3", out)
	})
	t.Run("Should render container-tag flavor without plus signs", func(t *testing.T) {
		out, err := MustParseVersion("1.2.3-rc.4+branch").Render(FlavorContainerTag)
		require.NoError(t, err)
		assert.Equal(t, "1.2.3-rc.4-branch", out)
	})
	t.Run("Should render package-manager flavor", func(t *testing.T) {
		out, err := MustParseVersion("1.2.3-rc.4+feature.branch").Render(FlavorPackageManager)
		require.NoError(t, err)
		assert.Equal(t, "1.2.3-rc.feature.branch.4", out)
	})
	t.Run("Should render package-manager flavor without prerelease", func(t *testing.T) {
		out, err := MustParseVersion("1.2.3").Render(FlavorPackageManager)
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", out)
	})
	t.Run("Should return error for unknown flavor", func(t *testing.T) {
		_, err := MustParseVersion("1.2.3").Render(VersionFlavor("bogus"))
		assert.Error(t, err)
	})
}

func TestParseFlavor(t *testing.T) {
	t.Run("Should accept known flavors", func(t *testing.T) {
		for _, s := range []string{"semver", "git-tag", "container-tag", "package-manager"} {
			flavor, err := ParseFlavor(s)
			require.NoError(t, err)
			assert.Equal(t, VersionFlavor(s), flavor)
		}
	})
	t.Run("Should reject unknown flavors", func(t *testing.T) {
		_, err := ParseFlavor("docker")
		assert.Error(t, err)
	})
}

func TestParseTagVersions(t *testing.T) {
	t.Run("Should parse v-prefixed tags only", func(t *testing.T) {
		versions := ParseTagVersions([]string{"v1.0.0", "2.0.0", "v1.1.0-rc.1", "latest", "v-bad"})
		require.Len(t, versions, 2)
		SortVersions(versions)
		assert.Equal(t, "1.0.0", versions[0].String())
		assert.Equal(t, "1.1.0-rc.1", versions[1].String())
	})
	t.Run("Should return nil for no usable tags", func(t *testing.T) {
		assert.Empty(t, ParseTagVersions([]string{"latest", "release-1"}))
	})
}
