package tools

import (
	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
)

// HmacAlgorithm is the MAC algorithm of the HMAC transformer.
type HmacAlgorithm string

const (
	HmacMD5    HmacAlgorithm = "HmacMD5"
	HmacSHA1   HmacAlgorithm = "HmacSHA1"
	HmacSHA256 HmacAlgorithm = "HmacSHA256"
	HmacSHA384 HmacAlgorithm = "HmacSHA384"
	HmacSHA512 HmacAlgorithm = "HmacSHA512"
)

func (HmacAlgorithm) PropertyTypeID() string { return "hmac-algorithm" }
func (a HmacAlgorithm) String() string       { return string(a) }

// HashAlgorithm is the digest of the hashing transformer.
type HashAlgorithm string

const (
	HashMD5      HashAlgorithm = "MD5"
	HashSHA1     HashAlgorithm = "SHA-1"
	HashSHA256   HashAlgorithm = "SHA-256"
	HashSHA512   HashAlgorithm = "SHA-512"
	HashSHA3_256 HashAlgorithm = "SHA3-256"
)

func (HashAlgorithm) PropertyTypeID() string { return "hash-algorithm" }
func (a HashAlgorithm) String() string       { return string(a) }

// JWTSignatureAlgorithm is the "alg" header of a JSON web token.
type JWTSignatureAlgorithm string

const (
	JWTHS256 JWTSignatureAlgorithm = "HS256"
	JWTHS384 JWTSignatureAlgorithm = "HS384"
	JWTHS512 JWTSignatureAlgorithm = "HS512"
	JWTRS256 JWTSignatureAlgorithm = "RS256"
	JWTES256 JWTSignatureAlgorithm = "ES256"
)

func (JWTSignatureAlgorithm) PropertyTypeID() string { return "jwt-signature-algorithm" }
func (a JWTSignatureAlgorithm) String() string       { return string(a) }

// TextCase is a word casing style.
type TextCase string

const (
	CamelCase          TextCase = "CAMEL_CASE"
	PascalCase         TextCase = "PASCAL_CASE"
	SnakeCase          TextCase = "SNAKE_CASE"
	ScreamingSnakeCase TextCase = "SCREAMING_SNAKE_CASE"
	KebabCase          TextCase = "KEBAB_CASE"
	LowerCase          TextCase = "LOWER_CASE"
	UpperCase          TextCase = "UPPER_CASE"
)

func (TextCase) PropertyTypeID() string { return "text-case" }
func (c TextCase) String() string       { return string(c) }

// BarcodeFormat is the symbology of the barcode generator.
type BarcodeFormat string

const (
	QRCode     BarcodeFormat = "QR_CODE"
	DataMatrix BarcodeFormat = "DATA_MATRIX"
	Code128    BarcodeFormat = "CODE_128"
	EAN13      BarcodeFormat = "EAN_13"
	PDF417     BarcodeFormat = "PDF_417"
)

func (BarcodeFormat) PropertyTypeID() string { return "barcode-format" }
func (f BarcodeFormat) String() string       { return string(f) }

// SQLDialect is the dialect of the SQL formatter.
type SQLDialect string

const (
	SQLStandard   SQLDialect = "STANDARD"
	SQLMySQL      SQLDialect = "MYSQL"
	SQLPostgreSQL SQLDialect = "POSTGRESQL"
	SQLOracle     SQLDialect = "ORACLE"
	SQLServer     SQLDialect = "SQL_SERVER"
)

func (SQLDialect) PropertyTypeID() string { return "sql-dialect" }
func (d SQLDialect) String() string       { return string(d) }

// DataSizeUnit is a unit of digital information.
type DataSizeUnit string

const (
	Bits      DataSizeUnit = "BITS"
	Bytes     DataSizeUnit = "BYTES"
	Kilobytes DataSizeUnit = "KILOBYTES"
	Megabytes DataSizeUnit = "MEGABYTES"
	Gigabytes DataSizeUnit = "GIGABYTES"
	Kibibytes DataSizeUnit = "KIBIBYTES"
	Mebibytes DataSizeUnit = "MEBIBYTES"
	Gibibytes DataSizeUnit = "GIBIBYTES"
)

func (DataSizeUnit) PropertyTypeID() string { return "data-size-unit" }
func (u DataSizeUnit) String() string       { return string(u) }

// Enums registers every enum type used by the catalog.
var Enums = proptype.EnumContributorFunc(func(r *proptype.Registry) error {
	registrations := []func() error{
		func() error {
			return proptype.RegisterEnum(r, "", HmacMD5, HmacSHA1, HmacSHA256, HmacSHA384, HmacSHA512)
		},
		func() error {
			return proptype.RegisterEnum(r, "", HashMD5, HashSHA1, HashSHA256, HashSHA512, HashSHA3_256)
		},
		func() error {
			return proptype.RegisterEnum(r, "", JWTHS256, JWTHS384, JWTHS512, JWTRS256, JWTES256)
		},
		func() error {
			return proptype.RegisterEnum(r, "", CamelCase, PascalCase, SnakeCase, ScreamingSnakeCase, KebabCase, LowerCase, UpperCase)
		},
		func() error {
			return proptype.RegisterEnum(r, "", QRCode, DataMatrix, Code128, EAN13, PDF417)
		},
		func() error {
			return proptype.RegisterEnum(r, "", SQLStandard, SQLMySQL, SQLPostgreSQL, SQLOracle, SQLServer)
		},
		func() error {
			return proptype.RegisterEnum(r, "", Bits, Bytes, Kilobytes, Megabytes, Gigabytes, Kibibytes, Mebibytes, Gibibytes)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
})

// NewRegistry returns a property type registry that knows the built-in kinds
// and every enum of the catalog.
func NewRegistry() (*proptype.Registry, error) {
	r := proptype.NewRegistry()
	if err := proptype.RegisterContributors(r, Enums); err != nil {
		return nil, err
	}
	return r, nil
}
