package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Binary expressions

## Test: +
` + "```scft-expr" + `
1 + 2
` + "```" + `
` + "```ast" + `
(binary "+" (int 1) (int 2))
` + "```" + `

## Test: -
` + "```scft-expr" + `
1 - 2
` + "```" + `
` + "```ast" + `
(binary "-" _ _)
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "+")
	be.Equal(t, tc1.Input, "1 + 2")
	be.Equal(t, tc1.InputType, InputTypeExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Content, `(binary "+" (int 1) (int 2))`)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.String(), `(binary "+" (int 1) (int 2))`)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "-")
	be.Equal(t, tc2.Assertions[0].ParsedSexy.Items[2].IsWildcard(), true)
}

func TestExtractTestCases_DiagnosticsAssertion(t *testing.T) {
	markdown := `## Test: unterminated block
` + "```scft-program" + `
f = () {
    x: Int
` + "```" + `
` + "```ast" + `
(program ...)
` + "```" + `
` + "```diagnostics" + `
error 1:8 Mismatched curly brackets. Start of block found here
empty 2:11 Reached end of file before finding a closing }
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputType, InputTypeProgram)
	be.Equal(t, tc.Input, "f = () {\n    x: Int")
	be.Equal(t, len(tc.Assertions), 2)

	dx, ok := tc.Assertion(AssertionTypeDiagnostics)
	be.True(t, ok)
	be.True(t, dx.ParsedSexy == nil)
	be.Equal(t, strings.Count(dx.Content, "\n"), 1)
	be.True(t, dx.Line > 1)

	_, ok = (&TestCase{}).Assertion(AssertionTypeAST)
	be.True(t, !ok)
}

func TestExtractTestCases_EmptyDiagnostics(t *testing.T) {
	markdown := "## Test: clean\n```scft-expr\nx\n```\n```diagnostics\n```\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	dx, ok := testCases[0].Assertion(AssertionTypeDiagnostics)
	be.True(t, ok)
	be.Equal(t, dx.Content, "")
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	tests := []string{
		"",
		"# Some document\n\nThis is just regular markdown content.\n\n## Regular heading\n",
	}
	for _, markdown := range tests {
		testCases, err := ExtractTestCases(markdown)
		be.Err(t, err, nil)
		be.Equal(t, len(testCases), 0)
	}
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + "```scft-expr" + `
1 + 2
` + "```" + `
` + "```ast" + `
(unclosed list
` + "```"

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "failed to parse Sexy assertion")
	be.Err(t, err, "line 6")
}

func TestExtractTestCases_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			"input fence outside test",
			"# Document\n\n```scft-expr\n1 + 2\n```\n",
			"line 4: scft-expr fence found outside of test case",
		},
		{
			"assertion fence outside test",
			"# Document\n\n```diagnostics\nerror 1:1 x\n```\n",
			"diagnostics fence found outside of test case",
		},
		{
			"unknown fence outside test",
			"# Document\n\n```go\nfunc main() {}\n```\n",
			"unknown fence language 'go' found outside of test case",
		},
		{
			"unknown fence in test",
			"## Test: t\n```scft-expr\n1\n```\n```ast\n(int 1)\n```\n```shell\necho\n```\n",
			"unknown fence language 'shell' in test 't'",
		},
		{
			"missing input",
			"## Test: no input\n```ast\n(int 1)\n```\n",
			"test 'no input' has no input fence",
		},
		{
			"missing assertion",
			"## Test: no assertions\n```scft-expr\n1\n```\n",
			"test 'no assertions' has no assertion fences",
		},
		{
			"multiple inputs",
			"## Test: twice\n```scft-expr\n1\n```\n```scft-program\nx = 1\n```\n```ast\n_\n```\n",
			"multiple input fences found in test 'twice'",
		},
		{
			"error in second test",
			"## Test: first\n```scft-expr\n1\n```\n```ast\n_\n```\n\n## Test: second\n```ast\n_\n```\n",
			"test 'second' has no input fence",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.expected)
		})
	}
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := `# Document with generic code block

` + "```" + `
some code without language
` + "```" + `

## Test: valid test
` + "```scft-expr" + `
1 + 2
` + "```" + `
` + "```ast" + `
(binary "+" _ _)
` + "```" + `

` + "```" + `
more code without language in test
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, testCases[0].Input, "1 + 2")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_MultilineSexy(t *testing.T) {
	markdown := `## Test: complex expression
` + "```scft-expr" + `
x + yyy * 2
` + "```" + `
` + "```ast" + `
(binary "+"
 (name "x")
 (binary "*"
  (name "yyy")
  (int 2)))
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)

	parsed := testCases[0].Assertions[0].ParsedSexy
	be.Equal(t, parsed.Type, NodeList)
	be.Equal(t, len(parsed.Items), 4)
	be.Equal(t, parsed.Items[0].Text, "binary")
	be.Equal(t, parsed.Items[1].Type, NodeString)
	be.Equal(t, parsed.Items[3].Items[3].Items[1].Text, "2")
}
