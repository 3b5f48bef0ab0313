package tools

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/hugo-lorenzo-mato/devtools/internal/proptype"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

const sampleText = "The quick brown fox jumps over the lazy dog"

const sampleJWT = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
	"eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ." +
	"SflKxwRJSMeKKF2QT4fwpMeJf36POk6yJV_adQssw5c"

func builtins() []Definition {
	return []Definition{
		{ID: "base64-encoder-decoder", Title: "Base64", Group: GroupEncoderDecoder, Bind: bindBase64},
		{ID: "jwt-encoder-decoder", Title: "JSON Web Token (JWT)", Group: GroupEncoderDecoder, Bind: bindJWT},
		{ID: "hmac-transformer", Title: "HMAC", Group: GroupTransformer, Bind: bindHmac},
		{ID: "hashing-transformer", Title: "Hashing", Group: GroupTransformer, Bind: bindHashing},
		{ID: "text-case-converter", Title: "Text Case", Group: GroupConverter, Bind: bindTextCase},
		{ID: "data-size-converter", Title: "Data Size", Group: GroupConverter, Bind: bindDataSize},
		{ID: "date-time-converter", Title: "Date Time", Group: GroupConverter, Bind: bindDateTime},
		{ID: "barcode-generator", Title: "Barcode", Group: GroupGenerator, Bind: bindBarcode},
		{ID: "sql-formatter", Title: "SQL", Group: GroupFormatter, Bind: bindSQLFormatter},
	}
}

// bindEditor registers the per-editor display toggles.
func bindEditor(b *binder, editorID string) {
	bind(b, editorID+"-editor-softWraps", true)
	bind(b, editorID+"-editor-showSpecialCharacters", false)
	bind(b, editorID+"-editor-showWhitespaces", false)
}

func bindBase64(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "urlSafe", false)
	bind(b, "lineLength", int32(76))
	bind(b, "decoded", "", input(sampleText)...)
	bindEditor(b, "encoded")
	bindEditor(b, "decoded")
	return b.err
}

func bindJWT(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "signatureAlgorithm", JWTHS256)
	bind(b, "encoded", "", input(sampleJWT)...)
	bind(b, "secret", "", sensitive("your-256-bit-secret")...)
	bindEditor(b, "encoded")
	bindEditor(b, "header")
	bindEditor(b, "payload")
	return b.err
}

func bindHmac(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "algorithm", HmacSHA256)
	bind(b, "source", "", input(sampleText)...)
	bind(b, "secretKey", "", sensitive("s3cr3t")...)
	bindEditor(b, "source")
	bindEditor(b, "target")
	return b.err
}

func bindHashing(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "algorithm", HashSHA256)
	bind(b, "source", "", input(sampleText)...)
	bindEditor(b, "source")
	bindEditor(b, "target")
	return b.err
}

func bindTextCase(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "inputCase", LowerCase)
	bind(b, "targetCase", CamelCase)
	bind(b, "original", "", input(sampleText)...)
	bindEditor(b, "original")
	bindEditor(b, "result")
	return b.err
}

func bindDataSize(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "value", decimal.Zero, input(decimal.NewFromInt(1024))...)
	bind(b, "unit", Kibibytes)
	bind(b, "targetUnit", Megabytes)
	bind(b, "scale", int32(6))
	return b.err
}

func bindDateTime(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "epochMillis", int64(0),
		toolconfig.WithType[int64](toolconfig.TypeInput),
		toolconfig.WithExampleProvider(func() int64 { return time.Now().UnixMilli() }),
	)
	bind(b, "locale", language.AmericanEnglish)
	bind(b, "pattern", "yyyy-MM-dd'T'HH:mm:ss.SSSXXX")
	bind(b, "timeZoneID", "UTC")
	bind(b, "utcOffsetHours", float64(0))
	return b.err
}

func bindBarcode(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "format", QRCode)
	bind(b, "content", "", input("https://example.com")...)
	bind(b, "width", int32(200))
	bind(b, "height", int32(200))
	bind(b, "margin", float32(4))
	bind(b, "foreground", proptype.NewColor(0x000000))
	bind(b, "background", proptype.NewColor(0xffffff))
	return b.err
}

func bindSQLFormatter(c *toolconfig.Configuration) error {
	b := &binder{c: c}
	bind(b, "liveConversion", true)
	bind(b, "dialect", SQLStandard)
	bind(b, "indentSpaces", int32(2))
	bind(b, "uppercaseKeywords", true)
	bind(b, "input", "", input("select id, name from users where active = true order by name")...)
	bindEditor(b, "input")
	bindEditor(b, "output")
	return b.err
}
