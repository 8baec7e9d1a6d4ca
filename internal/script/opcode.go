// Package script models the stack-machine scripts attached to
// transaction inputs and outputs: chunks, canonical serialization, the
// numeric stack type, and the standard spend templates.
package script

// Opcodes. Values in the gaps are unassigned and invalid to execute.
const (
	OP_0         = 0x00
	OP_PUSHDATA1 = 0x4c
	OP_PUSHDATA2 = 0x4d
	OP_PUSHDATA4 = 0x4e
	OP_1NEGATE   = 0x4f
	OP_1         = 0x51
	OP_2         = 0x52
	OP_3         = 0x53
	OP_4         = 0x54
	OP_5         = 0x55
	OP_6         = 0x56
	OP_7         = 0x57
	OP_8         = 0x58
	OP_9         = 0x59
	OP_10        = 0x5a
	OP_11        = 0x5b
	OP_12        = 0x5c
	OP_13        = 0x5d
	OP_14        = 0x5e
	OP_15        = 0x5f
	OP_16        = 0x60

	OP_IF     = 0x63
	OP_NOTIF  = 0x64
	OP_ELSE   = 0x67
	OP_ENDIF  = 0x68
	OP_VERIFY = 0x69
	OP_RETURN = 0x6a

	OP_TOALTSTACK   = 0x6b
	OP_FROMALTSTACK = 0x6c
	OP_2DROP        = 0x6d
	OP_2DUP         = 0x6e
	OP_3DUP         = 0x6f
	OP_2OVER        = 0x70
	OP_2ROT         = 0x71
	OP_2SWAP        = 0x72
	OP_IFDUP        = 0x73
	OP_DEPTH        = 0x74
	OP_DROP         = 0x75
	OP_DUP          = 0x76
	OP_NIP          = 0x77
	OP_OVER         = 0x78
	OP_PICK         = 0x79
	OP_ROLL         = 0x7a
	OP_ROT          = 0x7b
	OP_SWAP         = 0x7c
	OP_TUCK         = 0x7d

	OP_CAT         = 0x7e
	OP_SUBSTR      = 0x7f
	OP_LEFT        = 0x80
	OP_RIGHT       = 0x81
	OP_SIZE        = 0x82
	OP_INVERT      = 0x83
	OP_AND         = 0x84
	OP_OR          = 0x85
	OP_XOR         = 0x86
	OP_EQUAL       = 0x87
	OP_EQUALVERIFY = 0x88

	OP_1ADD      = 0x8b
	OP_1SUB      = 0x8c
	OP_2MUL      = 0x8d
	OP_2DIV      = 0x8e
	OP_NEGATE    = 0x8f
	OP_ABS       = 0x90
	OP_NOT       = 0x91
	OP_0NOTEQUAL = 0x92

	OP_ADD    = 0x93
	OP_SUB    = 0x94
	OP_MUL    = 0x95
	OP_DIV    = 0x96
	OP_MOD    = 0x97
	OP_LSHIFT = 0x98
	OP_RSHIFT = 0x99

	OP_BOOLAND            = 0x9a
	OP_BOOLOR             = 0x9b
	OP_NUMEQUAL           = 0x9c
	OP_NUMEQUALVERIFY     = 0x9d
	OP_NUMNOTEQUAL        = 0x9e
	OP_LESSTHAN           = 0x9f
	OP_GREATERTHAN        = 0xa0
	OP_LESSTHANOREQUAL    = 0xa1
	OP_GREATERTHANOREQUAL = 0xa2
	OP_MIN                = 0xa3
	OP_MAX                = 0xa4
	OP_WITHIN             = 0xa5

	OP_BLAKE3              = 0xa6
	OP_DOUBLEBLAKE3        = 0xa7
	OP_CHECKSIG            = 0xac
	OP_CHECKSIGVERIFY      = 0xad
	OP_CHECKMULTISIG       = 0xae
	OP_CHECKMULTISIGVERIFY = 0xaf

	OP_CHECKLOCKABSVERIFY = 0xb1
	OP_CHECKLOCKRELVERIFY = 0xb2
)

// OpcodeToName maps assigned opcode values to their names.
var OpcodeToName = map[byte]string{
	OP_0:         "0",
	OP_PUSHDATA1: "PUSHDATA1",
	OP_PUSHDATA2: "PUSHDATA2",
	OP_PUSHDATA4: "PUSHDATA4",
	OP_1NEGATE:   "1NEGATE",
	OP_1:         "1",
	OP_2:         "2",
	OP_3:         "3",
	OP_4:         "4",
	OP_5:         "5",
	OP_6:         "6",
	OP_7:         "7",
	OP_8:         "8",
	OP_9:         "9",
	OP_10:        "10",
	OP_11:        "11",
	OP_12:        "12",
	OP_13:        "13",
	OP_14:        "14",
	OP_15:        "15",
	OP_16:        "16",

	OP_IF:     "IF",
	OP_NOTIF:  "NOTIF",
	OP_ELSE:   "ELSE",
	OP_ENDIF:  "ENDIF",
	OP_VERIFY: "VERIFY",
	OP_RETURN: "RETURN",

	OP_TOALTSTACK:   "TOALTSTACK",
	OP_FROMALTSTACK: "FROMALTSTACK",
	OP_2DROP:        "2DROP",
	OP_2DUP:         "2DUP",
	OP_3DUP:         "3DUP",
	OP_2OVER:        "2OVER",
	OP_2ROT:         "2ROT",
	OP_2SWAP:        "2SWAP",
	OP_IFDUP:        "IFDUP",
	OP_DEPTH:        "DEPTH",
	OP_DROP:         "DROP",
	OP_DUP:          "DUP",
	OP_NIP:          "NIP",
	OP_OVER:         "OVER",
	OP_PICK:         "PICK",
	OP_ROLL:         "ROLL",
	OP_ROT:          "ROT",
	OP_SWAP:         "SWAP",
	OP_TUCK:         "TUCK",

	OP_CAT:         "CAT",
	OP_SUBSTR:      "SUBSTR",
	OP_LEFT:        "LEFT",
	OP_RIGHT:       "RIGHT",
	OP_SIZE:        "SIZE",
	OP_INVERT:      "INVERT",
	OP_AND:         "AND",
	OP_OR:          "OR",
	OP_XOR:         "XOR",
	OP_EQUAL:       "EQUAL",
	OP_EQUALVERIFY: "EQUALVERIFY",

	OP_1ADD:      "1ADD",
	OP_1SUB:      "1SUB",
	OP_2MUL:      "2MUL",
	OP_2DIV:      "2DIV",
	OP_NEGATE:    "NEGATE",
	OP_ABS:       "ABS",
	OP_NOT:       "NOT",
	OP_0NOTEQUAL: "0NOTEQUAL",

	OP_ADD:    "ADD",
	OP_SUB:    "SUB",
	OP_MUL:    "MUL",
	OP_DIV:    "DIV",
	OP_MOD:    "MOD",
	OP_LSHIFT: "LSHIFT",
	OP_RSHIFT: "RSHIFT",

	OP_BOOLAND:            "BOOLAND",
	OP_BOOLOR:             "BOOLOR",
	OP_NUMEQUAL:           "NUMEQUAL",
	OP_NUMEQUALVERIFY:     "NUMEQUALVERIFY",
	OP_NUMNOTEQUAL:        "NUMNOTEQUAL",
	OP_LESSTHAN:           "LESSTHAN",
	OP_GREATERTHAN:        "GREATERTHAN",
	OP_LESSTHANOREQUAL:    "LESSTHANOREQUAL",
	OP_GREATERTHANOREQUAL: "GREATERTHANOREQUAL",
	OP_MIN:                "MIN",
	OP_MAX:                "MAX",
	OP_WITHIN:             "WITHIN",

	OP_BLAKE3:              "BLAKE3",
	OP_DOUBLEBLAKE3:        "DOUBLEBLAKE3",
	OP_CHECKSIG:            "CHECKSIG",
	OP_CHECKSIGVERIFY:      "CHECKSIGVERIFY",
	OP_CHECKMULTISIG:       "CHECKMULTISIG",
	OP_CHECKMULTISIGVERIFY: "CHECKMULTISIGVERIFY",

	OP_CHECKLOCKABSVERIFY: "CHECKLOCKABSVERIFY",
	OP_CHECKLOCKRELVERIFY: "CHECKLOCKRELVERIFY",
}

// NameToOpcode is the reverse of OpcodeToName.
var NameToOpcode = func() map[string]byte {
	m := make(map[string]byte, len(OpcodeToName))
	for op, name := range OpcodeToName {
		m[name] = op
	}
	return m
}()
