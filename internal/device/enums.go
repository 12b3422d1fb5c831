// internal/device/enums.go
package device

import (
	"fmt"
	"strings"

	"github.com/tamzrod/basedctl/internal/fault"
)

// token binds one external spelling to one wire value.
type token[T comparable] struct {
	name  string
	value T
}

// tokenSet is an ordered variant table. Order is the order shown to users.
type tokenSet[T comparable] []token[T]

func (s tokenSet[T]) parse(op, in string) (T, error) {
	for _, t := range s {
		if t.name == in {
			return t.value, nil
		}
	}
	var zero T
	return zero, fault.Usagef(op, "invalid value %q (want %s)", in, s.list())
}

func (s tokenSet[T]) name(v T) (string, bool) {
	for _, t := range s {
		if t.value == v {
			return t.name, true
		}
	}
	return "", false
}

func (s tokenSet[T]) has(v T) bool {
	_, ok := s.name(v)
	return ok
}

func (s tokenSet[T]) list() string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.name
	}
	return strings.Join(names, ", ")
}

// ---- prompt language ----

// PromptLanguage is the language half of the prompt byte.
type PromptLanguage byte

const (
	LanguageEN PromptLanguage = 0x21
	LanguageFR PromptLanguage = 0x22
	LanguageIT PromptLanguage = 0x23
	LanguageDE PromptLanguage = 0x24
	LanguageES PromptLanguage = 0x26
	LanguagePT PromptLanguage = 0x27
	LanguageZH PromptLanguage = 0x28
	LanguageKO PromptLanguage = 0x29
	LanguageRU PromptLanguage = 0x2A
	LanguagePL PromptLanguage = 0x2B
	LanguageNL PromptLanguage = 0x2E
	LanguageJA PromptLanguage = 0x2F
	LanguageSV PromptLanguage = 0x32
)

// VoicePromptsFlag is the bit of the prompt byte that switches prompts on.
// The remaining bits carry the language.
const VoicePromptsFlag byte = 0x80

// decodeLanguages is every language seen in device responses.
var decodeLanguages = tokenSet[PromptLanguage]{
	{"en", LanguageEN},
	{"fr", LanguageFR},
	{"it", LanguageIT},
	{"de", LanguageDE},
	{"es", LanguageES},
	{"pt", LanguagePT},
	{"zh", LanguageZH},
	{"ko", LanguageKO},
	{"ru", LanguageRU},
	{"pl", LanguagePL},
	{"nl", LanguageNL},
	{"ja", LanguageJA},
	{"sv", LanguageSV},
}

// inputLanguages is the documented subset accepted from users. ru and pl
// decode fine but are not advertised, so they are not accepted as input.
var inputLanguages = tokenSet[PromptLanguage]{
	{"en", LanguageEN},
	{"fr", LanguageFR},
	{"it", LanguageIT},
	{"de", LanguageDE},
	{"es", LanguageES},
	{"pt", LanguagePT},
	{"zh", LanguageZH},
	{"ko", LanguageKO},
	{"nl", LanguageNL},
	{"ja", LanguageJA},
	{"sv", LanguageSV},
}

func ParsePromptLanguage(s string) (PromptLanguage, error) {
	return inputLanguages.parse("prompt language", s)
}

// Known reports whether the language decodes to a named language.
func (l PromptLanguage) Known() bool { return decodeLanguages.has(l) }

func (l PromptLanguage) String() string {
	if n, ok := decodeLanguages.name(l); ok {
		return n
	}
	return fmt.Sprintf("Unknown [0x%02X]", byte(l))
}

// PromptSetting is the decoded prompt byte.
type PromptSetting struct {
	Language     PromptLanguage
	VoicePrompts bool
}

// DecodePromptByte masks the flag out before interpreting the language.
func DecodePromptByte(b byte) PromptSetting {
	return PromptSetting{
		Language:     PromptLanguage(b &^ VoicePromptsFlag),
		VoicePrompts: b&VoicePromptsFlag != 0,
	}
}

func (p PromptSetting) Byte() byte {
	b := byte(p.Language) &^ VoicePromptsFlag
	if p.VoicePrompts {
		b |= VoicePromptsFlag
	}
	return b
}

// ---- on/off switch ----

var switchTokens = tokenSet[bool]{
	{"on", true},
	{"off", false},
}

// ParseSwitch parses the on/off values used by --voice-prompts.
func ParseSwitch(op, s string) (bool, error) {
	return switchTokens.parse(op, s)
}

// ---- auto-off ----

// AutoOff is the power-off timer in minutes. Zero means never.
type AutoOff byte

const (
	AutoOffNever AutoOff = 0
	AutoOff5     AutoOff = 5
	AutoOff20    AutoOff = 20
	AutoOff40    AutoOff = 40
	AutoOff60    AutoOff = 60
	AutoOff180   AutoOff = 180
)

var autoOffTokens = tokenSet[AutoOff]{
	{"never", AutoOffNever},
	{"5", AutoOff5},
	{"20", AutoOff20},
	{"40", AutoOff40},
	{"60", AutoOff60},
	{"180", AutoOff180},
}

func ParseAutoOff(s string) (AutoOff, error) {
	return autoOffTokens.parse("auto-off", s)
}

func (a AutoOff) String() string {
	if n, ok := autoOffTokens.name(a); ok {
		return n
	}
	return fmt.Sprintf("%d", byte(a))
}

// ---- noise cancelling ----

type NoiseCancelling byte

const (
	NoiseCancellingOff  NoiseCancelling = 0x00
	NoiseCancellingHigh NoiseCancelling = 0x01
	NoiseCancellingLow  NoiseCancelling = 0x03
	// NoiseCancellingUnsupported is never sent; it marks a status that
	// carried no noise cancelling frame.
	NoiseCancellingUnsupported NoiseCancelling = 0xFF
)

var noiseCancellingTokens = tokenSet[NoiseCancelling]{
	{"high", NoiseCancellingHigh},
	{"low", NoiseCancellingLow},
	{"off", NoiseCancellingOff},
}

func ParseNoiseCancelling(s string) (NoiseCancelling, error) {
	return noiseCancellingTokens.parse("noise cancelling", s)
}

func (n NoiseCancelling) String() string {
	if n == NoiseCancellingUnsupported {
		return "unsupported"
	}
	if s, ok := noiseCancellingTokens.name(n); ok {
		return s
	}
	return fmt.Sprintf("Unknown [0x%02X]", byte(n))
}

// ---- pairing ----

type Pairing byte

const (
	PairingOff Pairing = 0x00
	PairingOn  Pairing = 0x01
)

var pairingTokens = tokenSet[Pairing]{
	{"on", PairingOn},
	{"off", PairingOff},
}

func ParsePairing(s string) (Pairing, error) {
	return pairingTokens.parse("pairing", s)
}

func (p Pairing) String() string {
	if s, ok := pairingTokens.name(p); ok {
		return s
	}
	return fmt.Sprintf("Unknown [0x%02X]", byte(p))
}

// ---- self voice ----

type SelfVoice byte

const (
	SelfVoiceOff    SelfVoice = 0x00
	SelfVoiceHigh   SelfVoice = 0x01
	SelfVoiceMedium SelfVoice = 0x02
	SelfVoiceLow    SelfVoice = 0x03
)

var selfVoiceTokens = tokenSet[SelfVoice]{
	{"high", SelfVoiceHigh},
	{"medium", SelfVoiceMedium},
	{"low", SelfVoiceLow},
	{"off", SelfVoiceOff},
}

func ParseSelfVoice(s string) (SelfVoice, error) {
	return selfVoiceTokens.parse("self voice", s)
}

func (v SelfVoice) String() string {
	if s, ok := selfVoiceTokens.name(v); ok {
		return s
	}
	return fmt.Sprintf("Unknown [0x%02X]", byte(v))
}

// ---- paired device status ----

// ConnectionStatus is how a paired peer relates to the headset.
type ConnectionStatus byte

const (
	StatusDisconnected ConnectionStatus = 0x00
	StatusConnected    ConnectionStatus = 0x01
	StatusThisDevice   ConnectionStatus = 0x03
)

var connectionStatusTokens = tokenSet[ConnectionStatus]{
	{"this-device", StatusThisDevice},
	{"connected", StatusConnected},
	{"disconnected", StatusDisconnected},
}

func (s ConnectionStatus) String() string {
	if n, ok := connectionStatusTokens.name(s); ok {
		return n
	}
	return fmt.Sprintf("Unknown [0x%02X]", byte(s))
}

// connectedCodes maps the paired-devices header byte to a peer count.
// There is deliberately no zero entry: the device itself always counts.
var connectedCodes = map[byte]int{
	0x01: 1,
	0x03: 2,
}
