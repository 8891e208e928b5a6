// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stub generates the POSIX shell launcher that is prepended to a
// packed jbundle executable.
package stub

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cereda/jbundle/internal/config"
)

const placeholder = "__STUB_SIZE__"

const banner = `cat >&2 <<'BANNER'
   _ _                    _ _
  (_) |__  _   _ _ __   __| | | ___
  | | '_ \| | | | '_ \ / _` + "`" + ` | |/ _ \
  | | |_) | |_| | | | | (_| | |  __/
 _/ |_.__/ \__,_|_| |_|\__,_|_|\___|
|__/
BANNER`

const compactBanner = `echo "jbundle" >&2`

// Params carries everything Generate needs to render one stub instance.
type Params struct {
	RuntimeHash   string
	RuntimeSize   int64
	AppHash       string
	AppSize       int64
	CracHash      string // empty if no checkpoint embedded
	CracSize      int64  // 0 if no checkpoint embedded
	Profile       config.JvmProfile
	JvmArgs       []string
	AppCDS        bool
	JavaVersion   int
	CompactBanner bool
}

// Generate renders the shell stub with the __STUB_SIZE__ placeholder still
// unresolved; call Finalize on the result before writing it out.
func Generate(p Params) string {
	profileFlags := strings.Join(p.Profile.Flags(), " ")
	var profileAndArgs strings.Builder
	if profileFlags != "" {
		profileAndArgs.WriteString(" " + profileFlags)
	}
	if len(p.JvmArgs) > 0 {
		profileAndArgs.WriteString(" " + strings.Join(p.JvmArgs, " "))
	}

	cdsFlags := "\nCDS_FLAG=\"\""
	if p.AppCDS && p.JavaVersion >= 19 {
		cdsFlags = "\n# AppCDS: auto-create shared archive on first run (JDK 19+)\n" +
			`CDS_FILE="$APP_DIR/app.jsa"` + "\n" +
			`CDS_FLAG="-XX:+AutoCreateSharedArchive -XX:SharedArchiveFile=$CDS_FILE"`
	}

	bannerBlock := banner
	if p.CompactBanner {
		bannerBlock = compactBanner
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#!/bin/sh\nset -e\n")
	fmt.Fprintf(&b, `CACHE="${HOME}/.jbundle/cache"`+"\n")
	fmt.Fprintf(&b, `RT_HASH="%s"    RT_SIZE=%d`+"\n", p.RuntimeHash, p.RuntimeSize)
	fmt.Fprintf(&b, `APP_HASH="%s"   APP_SIZE=%d`+"\n", p.AppHash, p.AppSize)
	fmt.Fprintf(&b, `CRAC_SIZE=%d       CRAC_HASH="%s"`+"\n\n", p.CracSize, p.CracHash)

	b.WriteString(bannerBlock + "\n\n")
	b.WriteString("STUB_SIZE=" + placeholder + "\n\n")

	b.WriteString("# Extract runtime (only if not cached)\n")
	b.WriteString(`RT_DIR="$CACHE/rt-$RT_HASH"` + "\n")
	b.WriteString(`if [ ! -d "$RT_DIR/bin" ]; then` + "\n")
	b.WriteString("    mkdir -p \"$RT_DIR\"\n")
	b.WriteString(`    echo "Extracting runtime (first run)..." >&2` + "\n")
	b.WriteString(`    tail -c +$((STUB_SIZE + 1)) "$0" | head -c "$RT_SIZE" | tar xzf - -C "$RT_DIR"` + "\n")
	b.WriteString("fi\n\n")

	b.WriteString("# Extract app.jar (decompress gzip, only if not cached)\n")
	b.WriteString(`APP_DIR="$CACHE/app-$APP_HASH"` + "\n")
	b.WriteString(`if [ ! -f "$APP_DIR/app.jar" ]; then` + "\n")
	b.WriteString("    mkdir -p \"$APP_DIR\"\n")
	b.WriteString(`    tail -c +$((STUB_SIZE + RT_SIZE + 1)) "$0" | head -c "$APP_SIZE" | gzip -d > "$APP_DIR/app.jar"` + "\n")
	b.WriteString("fi\n")
	b.WriteString(cdsFlags + "\n\n")

	b.WriteString("# CRaC restore (Linux only)\n")
	b.WriteString(`if [ "$CRAC_SIZE" -gt 0 ] 2>/dev/null && [ "$(uname)" = "Linux" ]; then` + "\n")
	b.WriteString(`    CRAC_DIR="$CACHE/crac-$CRAC_HASH"` + "\n")
	b.WriteString(`    if [ ! -d "$CRAC_DIR/cr" ]; then` + "\n")
	b.WriteString("        mkdir -p \"$CRAC_DIR\"\n")
	b.WriteString(`        tail -c +$((STUB_SIZE + RT_SIZE + APP_SIZE + 1)) "$0" | head -c "$CRAC_SIZE" | tar xzf - -C "$CRAC_DIR"` + "\n")
	b.WriteString("    fi\n")
	b.WriteString("    set +e\n")
	b.WriteString(`    "$RT_DIR/bin/java" -XX:CRaCRestoreFrom="$CRAC_DIR/cr" "$@" 2>/dev/null` + "\n")
	b.WriteString("    CRAC_STATUS=$?\n")
	b.WriteString("    set -e\n")
	b.WriteString(`    [ "$CRAC_STATUS" -eq 0 ] && exit 0` + "\n")
	b.WriteString("fi\n\n")

	b.WriteString("# Launch with profile flags + AppCDS + user args\n")
	fmt.Fprintf(&b, `exec "$RT_DIR/bin/java"%s $CDS_FLAG -jar "$APP_DIR/app.jar" "$@"`+"\n", profileAndArgs.String())
	b.WriteString("exit 0\n")
	b.WriteString("# --- PAYLOAD BELOW ---\n")

	return b.String()
}

// Finalize resolves the __STUB_SIZE__ placeholder to the stub's own final
// byte length. Because substituting the number changes the stub's length,
// the fixpoint is found iteratively: start assuming 1 digit, then repeatedly
// recompute until the candidate's digit count stops growing.
func Finalize(stub string) string {
	baseLen := len(stub) - len(placeholder)
	size := baseLen + 1
	for {
		digits := len(strconv.Itoa(size))
		candidate := baseLen + digits
		if len(strconv.Itoa(candidate)) == digits {
			size = candidate
			break
		}
		size = candidate
	}
	return strings.Replace(stub, placeholder, strconv.Itoa(size), 1)
}
