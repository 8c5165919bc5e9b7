package validate_test

import (
	"testing"

	"github.com/pecanrolls/rolls-gateway/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type rpcCall struct {
	Method string `json:"method" validate:"required,rpcmethod"`
}

type lookup struct {
	Address string `query:"address" validate:"required"`
}

func TestCheck(t *testing.T) {
	t.Log("Given the need to validate request models.")
	{
		tests := []struct {
			name  string
			val   any
			field string
		}{
			{"valid method", rpcCall{Method: "get_blockchain_state"}, ""},
			{"missing method", rpcCall{}, "method"},
			{"path in method", rpcCall{Method: "../get_blockchain_state"}, "method"},
			{"upper case method", rpcCall{Method: "Get_Block"}, "method"},
			{"missing address", lookup{}, "address"},
			{"valid address", lookup{Address: "rol1abc"}, ""},
		}

		for testID, tst := range tests {
			t.Logf("\tTest %d:\tWhen checking %s.", testID, tst.name)
			{
				err := validate.Check(tst.val)

				if tst.field == "" {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould pass validation: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
					continue
				}

				fields := validate.GetFieldErrors(err)
				if fields == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

				if _, exists := fields.Fields()[tst.field]; !exists {
					t.Fatalf("\t%s\tTest %d:\tShould name the %s field: %v", failed, testID, tst.field, fields)
				}
				t.Logf("\t%s\tTest %d:\tShould name the %s field.", success, testID, tst.field)
			}
		}
	}
}
