package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellocert/internal/certificate"
	"github.com/dropDatabas3/hellocert/internal/config"
	dto "github.com/dropDatabas3/hellocert/internal/http/dto/certificates"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
	"github.com/dropDatabas3/hellocert/internal/observability/logger"
)

// exitError lleva el código de salida de `verify` (1 invalid, 2 expired).
type exitError struct {
	code   int
	status string
}

func (e *exitError) Error() string { return "certificate " + e.status }

func main() {
	_ = godotenv.Load(envOr("CERTCTL_ENV_FILE", ".env"))

	cmd := newRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	privPath   string
	pubPath    string

	cfg *config.Config
}

// keystore arma el FileKeystore con los paths efectivos (flag > config > default).
func (o *options) keystore() *jwtx.FileKeystore {
	return jwtx.NewFileKeystore(o.privPath, o.pubPath, o.cfg.Keys.Bits)
}

func newRootCmd(out io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "certctl",
		Short:         "Emisión y verificación offline de certificados firmados (RS256)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			o.cfg = cfg
			if o.privPath == "" {
				o.privPath = cfg.Keys.PrivatePath
			}
			if o.pubPath == "" {
				o.pubPath = cfg.Keys.PublicPath
			}
			// la CLI escribe resultados en stdout; logs solo si algo anda mal
			logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "certctl"})
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&o.configPath, "config", envOr("CONFIG_PATH", "config.yaml"), "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&o.privPath, "private-key", "", "ruta a la clave privada PEM (default: keys.private_path)")
	root.PersistentFlags().StringVar(&o.pubPath, "public-key", "", "ruta a la clave pública PEM (default: keys.public_path)")

	root.AddCommand(newKeysCmd(o), newIssueCmd(o), newVerifyCmd(o))
	return root
}

// ───────────── keys ─────────────

func newKeysCmd(o *options) *cobra.Command {
	keys := &cobra.Command{Use: "keys", Short: "Gestión del par de claves de firma"}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Genera el par si no existe (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks := o.keystore()
			set, err := ks.Ensure()
			if err != nil {
				return err
			}
			state := "loaded"
			if ks.Generated() {
				state = "generated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s kid=%s private=%s public=%s\n", state, set.KID, o.privPath, o.pubPath)
			return nil
		},
	}

	var asJWKS bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Muestra kid y clave pública (no genera claves)",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range []string{o.privPath, o.pubPath} {
				if _, err := os.Stat(p); err != nil {
					return fmt.Errorf("key file %s not available (run `certctl keys init`): %w", p, err)
				}
			}
			set, err := o.keystore().Ensure()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJWKS {
				_, err := fmt.Fprintln(w, string(set.JWKSJSON()))
				return err
			}
			pub, err := jwtx.MarshalPublicPEM(set.Pub)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "kid: %s\nalg: %s\nbits: %d\n\n%s", set.KID, set.Alg, set.Pub.N.BitLen(), pub)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJWKS, "jwks", false, "imprimir como JWKS (JSON)")

	keys.AddCommand(initCmd, showCmd)
	return keys
}

// ───────────── issue ─────────────

func newIssueCmd(o *options) *cobra.Command {
	var req certificate.CreateRequest

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Firma un certificado y lo imprime como JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := certificate.NewService(certificate.Deps{
				Keys:       o.keystore(),
				IssuerName: o.cfg.Certificate.Issuer,
				Validity:   o.cfg.ValidityDuration(),
				PublicURL:  o.cfg.PublicURL,
			})
			if err != nil {
				return err
			}
			cert, err := svc.Create(context.Background(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.CertificateResponse{
				CertificateID:    cert.ID,
				VerificationLink: cert.VerificationLink,
				Token:            cert.Token,
				Name:             cert.Name,
				Course:           cert.Course,
				Date:             cert.Date,
				Issuer:           cert.Issuer,
				IssuedAt:         cert.IssuedAt,
				ExpiresAt:        cert.ExpiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "nombre del alumno")
	cmd.Flags().StringVar(&req.Course, "course", "", "nombre del curso")
	cmd.Flags().StringVar(&req.Date, "date", "", "fecha de finalización (texto libre)")
	cmd.Flags().StringVar(&req.BaseURL, "base-url", "", "base del link de verificación (default: public_url)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

// ───────────── verify ─────────────

func newVerifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verifica un token (exit 0 valid, 1 invalid, 2 expired)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range []string{o.privPath, o.pubPath} {
				if _, err := os.Stat(p); err != nil {
					return fmt.Errorf("key file %s not available: %w", p, err)
				}
			}
			set, err := o.keystore().Ensure()
			if err != nil {
				return err
			}
			res := jwtx.NewVerifier(set.Pub).Verify(strings.TrimSpace(args[0]))

			out := dto.VerifyResponse{Valid: res.Valid(), Status: string(res.Status), Reason: res.Reason()}
			if c := res.Claims; c != nil {
				out.Payload = &dto.Payload{
					CertificateID: c.CertID,
					Name:          c.Name,
					Course:        c.Course,
					Date:          c.Date,
					Issuer:        c.IssuerName,
					IssuedAt:      c.IssuedAtTime().Unix(),
					ExpiresAt:     c.ExpiresAtTime().Unix(),
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			switch res.Status {
			case jwtx.StatusValid:
				return nil
			case jwtx.StatusExpired:
				return &exitError{code: 2, status: string(res.Status)}
			default:
				return &exitError{code: 1, status: string(res.Status)}
			}
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
