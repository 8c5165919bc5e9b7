package fullnode_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pecanrolls/rolls-gateway/foundation/fullnode"
)

type keyPair struct {
	cert *x509.Certificate
	der  []byte
	key  *ecdsa.PrivateKey
}

func issue(t *testing.T, name string, parent *keyPair, usage x509.ExtKeyUsage) *keyPair {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
	}

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: name, Organization: []string{"Rolls"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	signer, signerKey := &tmpl, key
	switch parent {
	case nil:
		tmpl.IsCA = true
		tmpl.BasicConstraintsValid = true
		tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature
	default:
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{usage}
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
		signer, signerKey = parent.cert, parent.key
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, signer, &key.PublicKey, signerKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a certificate: %v", failed, err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the certificate: %v", failed, err)
	}

	return &keyPair{cert: cert, der: der, key: key}
}

func (kp *keyPair) write(t *testing.T, dir string, name string) (string, string) {
	t.Helper()

	keyDER, err := x509.MarshalECPrivateKey(kp.key)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to marshal the key: %v", failed, err)
	}

	crt := filepath.Join(dir, name+".crt")
	key := filepath.Join(dir, name+".key")

	if err := os.WriteFile(crt, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: kp.der}), 0o600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the certificate: %v", failed, err)
	}
	if err := os.WriteFile(key, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the key: %v", failed, err)
	}

	return crt, key
}

func (kp *keyPair) tlsCert() tls.Certificate {
	return tls.Certificate{Certificate: [][]byte{kp.der}, PrivateKey: kp.key}
}

func TestMutualTLS(t *testing.T) {
	t.Log("Given the need to reach the node over mutual TLS.")
	{
		dir := t.TempDir()

		ca := issue(t, "Rolls CA", nil, 0)
		server := issue(t, "Rolls Node", ca, x509.ExtKeyUsageServerAuth)
		client := issue(t, "Rolls Daemon", ca, x509.ExtKeyUsageClientAuth)
		stranger := issue(t, "Stranger CA", nil, 0)

		caCrt, _ := ca.write(t, dir, "ca")
		clientCrt, clientKey := client.write(t, dir, "client")
		strangerCrt, _ := stranger.write(t, dir, "stranger")

		pool := x509.NewCertPool()
		pool.AddCert(ca.cert)

		srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"blockchain_state": {"peak": null}, "success": true}`))
		}))
		srv.TLS = &tls.Config{
			Certificates: []tls.Certificate{server.tlsCert()},
			ClientCAs:    pool,
			ClientAuth:   tls.RequireAndVerifyClientCert,
		}
		srv.StartTLS()
		defer srv.Close()

		host, portStr, _ := net.SplitHostPort(srv.Listener.Addr().String())
		port, _ := strconv.Atoi(portStr)

		testID := 0
		t.Logf("\tTest %d:\tWhen the node certificate is issued by the private CA.", testID)
		{
			c, err := fullnode.New(fullnode.Config{Host: host, Port: port, CACertPath: caCrt, CertPath: clientCrt, KeyPath: clientKey})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the certificates: %v", failed, testID, err)
			}
			defer c.Close()

			if _, err := c.BlockchainState(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to call the node: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to call the node.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the node certificate is from another CA.", testID)
		{
			c, err := fullnode.New(fullnode.Config{Host: host, Port: port, CACertPath: strangerCrt, CertPath: clientCrt, KeyPath: clientKey})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the certificates: %v", failed, testID, err)
			}
			defer c.Close()

			if _, err := c.BlockchainState(context.Background()); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the node certificate.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse the node certificate.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the certificate files are missing.", testID)
		{
			_, err := fullnode.New(fullnode.Config{Host: host, Port: port, CACertPath: filepath.Join(dir, "missing.crt")})
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to create the client.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to create the client.", success, testID)
		}
	}
}
