package derived

import (
	"fmt"

	"github.com/dop251/goja"
)

// applySandbox locks the VM down for expression evaluation: host-runtime
// globals are removed, eval is barred, and the builtins an expression may
// legitimately touch are frozen against tampering.
func applySandbox(vm *goja.Runtime) error {
	dangerousGlobals := []string{
		"require",
		"module",
		"exports",
		"process",
		"global",
		"__dirname",
		"__filename",
		"Buffer",
		"setImmediate",
		"clearImmediate",
	}
	for _, name := range dangerousGlobals {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	restrictedEval := func(call goja.FunctionCall) goja.Value {
		panic(vm.NewTypeError("eval is not allowed in expressions"))
	}
	if err := vm.Set("eval", restrictedEval); err != nil {
		return fmt.Errorf("failed to restrict eval: %w", err)
	}

	return freezeBuiltins(vm)
}

func freezeBuiltins(vm *goja.Runtime) error {
	freezeScript := `
		(function() {
			var names = ["Object", "Array", "Function", "String", "Number", "Boolean", "Math", "JSON"];
			for (var i = 0; i < names.length; i++) {
				var obj = this[names[i]];
				if (obj && typeof obj === 'object' || typeof obj === 'function') {
					Object.freeze(obj);
					if (obj.prototype) {
						Object.freeze(obj.prototype);
					}
				}
			}
		})()
	`
	if _, err := vm.RunString(freezeScript); err != nil {
		return fmt.Errorf("failed to freeze builtins: %w", err)
	}
	return nil
}
