package descriptor

import (
	"fmt"
	"strings"
)

const libraryTemplate = `py_library(
    name = "%s",
    srcs = glob(["**/*.py"]),
    data = glob(
        ["**/*"],
        exclude = [
            "**/*.py",
            "**/* *",  # Bazel runfiles cannot have spaces in the name
            "**/BUILD",
        ],
    ),
    deps = [%s],
    imports = ["."],
    visibility = ["//visibility:public"],
)
`

const binaryTemplate = `py_binary(
    name = "%s",
    srcs = ["bin/%s.py"],
    deps = [":%s"],
    visibility = ["//visibility:public"],
    main = "bin/%s.py",
)
`

const filegroupTemplate = `filegroup(
    name = "%s",
    srcs = glob(["*"]),
)

exports_files([%s])
`

func libraryRule(name string, deps []string) string {
	return fmt.Sprintf(libraryTemplate, name, stringList(deps))
}

// binaryRule declares the console script ep. A script named like the
// library itself gets a "bin-" prefix so the two rules do not clash.
func binaryRule(libraryName, ep string) string {
	rule := ep
	if ep == libraryName {
		rule = "bin-" + ep
	}
	return fmt.Sprintf(binaryTemplate, rule, ep, libraryName, ep)
}

func filegroupRule(name string, files []string) string {
	return fmt.Sprintf(filegroupTemplate, name, stringList(files))
}

func stringList(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = `"` + value + `"`
	}
	return strings.Join(quoted, ", ")
}
