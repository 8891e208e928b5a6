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

package classify

import "testing"

import "github.com/stretchr/testify/assert"

func TestClassifyClassFiles(t *testing.T) {
	assert.Equal(t, Class, Classify("com/example/Main.class"))
	assert.Equal(t, Class, Classify("clojure/core__init.class"))
}

func TestClassifyClojureSources(t *testing.T) {
	assert.Equal(t, ClojureSource, Classify("clojure/core.clj"))
	assert.Equal(t, ClojureSource, Classify("myapp/core.cljc"))
	assert.Equal(t, ClojureSource, Classify("myapp/main.cljs"))
}

func TestClassifyJavaSources(t *testing.T) {
	assert.Equal(t, JavaSource, Classify("com/example/Main.java"))
}

func TestClassifyNativeLibs(t *testing.T) {
	assert.Equal(t, NativeLib, Classify("lib/native/libfoo.so"))
	assert.Equal(t, NativeLib, Classify("lib/native/libfoo.dylib"))
	assert.Equal(t, NativeLib, Classify("foo.dll"))
	assert.Equal(t, NativeLib, Classify("lib/native/libfoo.jnilib"))
}

func TestClassifyMetadata(t *testing.T) {
	assert.Equal(t, Metadata, Classify("META-INF/MANIFEST.MF"))
	assert.Equal(t, Metadata, Classify("META-INF/maven/pom.xml"))
}

func TestClassifyResources(t *testing.T) {
	assert.Equal(t, Resource, Classify("config.edn"))
	assert.Equal(t, Resource, Classify("logback.xml"))
	assert.Equal(t, Resource, Classify("templates/index.html"))
}

func TestExtractPackage(t *testing.T) {
	assert.Equal(t, "org.apache.commons", ExtractPackage("org/apache/commons/lang3/StringUtils.class"))
	assert.Equal(t, "com", ExtractPackage("com/Main.class"))
	assert.Equal(t, "com.example", ExtractPackage("com/example/Main.class"))
	assert.Equal(t, "(root)", ExtractPackage("Main.class"))
}

func TestDetectClojureNS(t *testing.T) {
	ns, ok := DetectClojureNS("myapp/core__init.class")
	assert.True(t, ok)
	assert.Equal(t, "myapp.core", ns)

	ns, ok = DetectClojureNS("myapp/handlers/api__init.class")
	assert.True(t, ok)
	assert.Equal(t, "myapp.handlers.api", ns)

	_, ok = DetectClojureNS("myapp/core.class")
	assert.False(t, ok)

	_, ok = DetectClojureNS("myapp/core$fn__123.class")
	assert.False(t, ok)

	_, ok = DetectClojureNS("myapp/core__init.clj")
	assert.False(t, ok)
}

func TestShouldSkipMavenMetadata(t *testing.T) {
	assert.True(t, ShouldSkip("META-INF/maven/org.clojure/clojure/pom.xml"))
	assert.True(t, ShouldSkip("META-INF/maven/org.clojure/clojure/pom.properties"))
}

func TestShouldSkipSignatures(t *testing.T) {
	assert.True(t, ShouldSkip("META-INF/CERT.SF"))
	assert.True(t, ShouldSkip("META-INF/CERT.DSA"))
	assert.True(t, ShouldSkip("META-INF/CERT.RSA"))
}

func TestShouldSkipJavaSources(t *testing.T) {
	assert.True(t, ShouldSkip("com/example/Main.java"))
	assert.True(t, ShouldSkip("org/apache/SomeClass.java"))
}

func TestShouldSkipLeiningenMetadata(t *testing.T) {
	assert.True(t, ShouldSkip("META-INF/leiningen/myapp/project.clj"))
	assert.True(t, ShouldSkip("project.clj"))
}

func TestKeepClassFiles(t *testing.T) {
	assert.False(t, ShouldSkip("com/example/Main.class"))
	assert.False(t, ShouldSkip("clojure/core__init.class"))
}

func TestKeepClojureSources(t *testing.T) {
	assert.False(t, ShouldSkip("clojure/core.clj"))
	assert.False(t, ShouldSkip("myapp/core.clj"))
}

func TestKeepResources(t *testing.T) {
	assert.False(t, ShouldSkip("config.edn"))
	assert.False(t, ShouldSkip("logback.xml"))
	assert.False(t, ShouldSkip("META-INF/MANIFEST.MF"))
}

func TestKeepLicenseFiles(t *testing.T) {
	assert.False(t, ShouldSkip("META-INF/LICENSE.txt"))
	assert.False(t, ShouldSkip("META-INF/NOTICE.txt"))
}

func TestSkipMetaInfDocs(t *testing.T) {
	assert.True(t, ShouldSkip("META-INF/README.md"))
	assert.True(t, ShouldSkip("META-INF/CHANGELOG.md"))
}

func TestShouldSkipTotalAndDeterministic(t *testing.T) {
	names := []string{"a.class", "a.clj", "a.java", "a.so", "META-INF/x", "random.txt", ""}
	for _, n := range names {
		first := ShouldSkip(n)
		second := ShouldSkip(n)
		assert.Equal(t, first, second)
	}
}
