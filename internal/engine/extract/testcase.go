package extract

import "slices"

// ReservedFields are the static fields every test case must declare itself.
var ReservedFields = []string{"owner", "timeout", "priority", "status"}

// EntryMethods are the method names that make a class runnable as a test.
var EntryMethods = []string{"run_test", "runTest"}

// IsTestCase reports whether an extracted class is a recognized test case:
// it defines an entry method and declares all reserved static fields in its
// own body. Inherited fields do not count since only the class body is read.
func IsTestCase(c Class) bool {
	hasEntry := slices.ContainsFunc(c.Functions, func(fn Function) bool {
		return slices.Contains(EntryMethods, fn.Name)
	})
	if !hasEntry {
		return false
	}

	declared := make(map[string]bool, len(c.StaticFields))
	for _, f := range c.StaticFields {
		declared[f.Name] = true
	}
	for _, name := range ReservedFields {
		if !declared[name] {
			return false
		}
	}
	return true
}
