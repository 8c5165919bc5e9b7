package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAddress(t *testing.T) {
	t.Log("Given the need to convert addresses.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen encoding then decoding a puzzle hash.", testID)
		{
			ph := strings.Repeat("ab", 32)

			addr, err := run(t, "address", "encode", "--prefix", "rol", "0x"+ph)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode : %v", failed, testID, err)
			}
			addr = strings.TrimSpace(addr)
			if !strings.HasPrefix(addr, "rol1") {
				t.Fatalf("\t%s\tTest %d:\tShould carry the prefix : %s", failed, testID, addr)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to encode.", success, testID)

			got, err := run(t, "address", "decode", addr)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode : %v", failed, testID, err)
			}
			if strings.TrimSpace(got) != ph {
				t.Fatalf("\t%s\tTest %d:\tShould get back the puzzle hash : %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the puzzle hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the puzzle hash is too short.", testID)
		{
			if _, err := run(t, "address", "encode", "abcd"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the puzzle hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the puzzle hash.", success, testID)
		}
	}
}

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/balance":
			if r.URL.Query().Get("address") == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Invalid Address"}`))
				return
			}
			w.Write([]byte(`{"amount":1000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Log("Given the need to query a gateway.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen asking for a balance.", testID)
		{
			out, err := run(t, "balance", "--url", srv.URL, "rol1xyz")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query : %v", failed, testID, err)
			}
			if !strings.Contains(out, `"amount": 1000`) {
				t.Fatalf("\t%s\tTest %d:\tShould print the balance : %s", failed, testID, out)
			}
			t.Logf("\t%s\tTest %d:\tShould print the balance.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the gateway refuses the call.", testID)
		{
			_, err := run(t, "tokens", "--url", srv.URL)
			if err == nil || !strings.Contains(err.Error(), "404") {
				t.Fatalf("\t%s\tTest %d:\tShould report the status : %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould report the status.", success, testID)
		}
	}
}
