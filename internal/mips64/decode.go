package mips64

import "mipsjit/internal/bits"

// Decoded is the fully-split-out form of a 32-bit guest instruction word;
// every field is pre-extracted once so emitters and the interpreter never
// re-mask the raw word.
type Decoded struct {
	Raw    uint32
	PC     uint64
	Opcode uint8 // bits 31:26
	Rs     uint8 // bits 25:21
	Rt     uint8 // bits 20:16
	Rd     uint8 // bits 15:11
	Shamt  uint8 // bits 10:6
	Funct  uint8 // bits 5:0
	Imm    uint16
	Sel    uint8  // bits 2:0, COP0 register selector
	Target uint32 // bits 25:0, jump target field
}

func decode(pc uint64, instr uint32) Decoded {
	return Decoded{
		Raw:    instr,
		PC:     pc,
		Opcode: uint8(instr>>26) & 0x3F,
		Rs:     uint8(instr>>21) & 0x1F,
		Rt:     uint8(instr>>16) & 0x1F,
		Rd:     uint8(instr>>11) & 0x1F,
		Shamt:  uint8(instr>>6) & 0x1F,
		Funct:  uint8(instr) & 0x3F,
		Imm:    uint16(instr),
		Sel:    uint8(instr) & 0x7,
		Target: instr & 0x3FFFFFF,
	}
}

// ImmSign sign-extends the 16-bit immediate field to 64 bits.
func (d Decoded) ImmSign() uint64 {
	return bits.SignExtend(uint64(d.Imm), 16)
}

// ImmZero zero-extends the 16-bit immediate field to 64 bits.
func (d Decoded) ImmZero() uint64 {
	return uint64(d.Imm)
}

// Major opcodes (bits 31:26).
const (
	opSPECIAL = 0x00
	opREGIMM  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0A
	opSLTIU   = 0x0B
	opANDI    = 0x0C
	opORI     = 0x0D
	opXORI    = 0x0E
	opLUI     = 0x0F
	opCOP0    = 0x10
	opBEQL    = 0x14
	opBNEL    = 0x15
	opBLEZL   = 0x16
	opBGTZL   = 0x17
	opDADDI   = 0x18
	opDADDIU  = 0x19
	opLDL     = 0x1A
	opLDR     = 0x1B
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opLWU     = 0x27
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2A
	opSW      = 0x2B
	opSDL     = 0x2C
	opSDR     = 0x2D
	opSWR     = 0x2E
	opCACHE   = 0x2F
	opLL      = 0x30
	opLLD     = 0x34
	opLD      = 0x37
	opSC      = 0x38
	opSCD     = 0x3C
	opSD      = 0x3F
)

// SPECIAL (opcode 0) function codes.
const (
	fnSLL     = 0x00
	fnSRL     = 0x02
	fnSRA     = 0x03
	fnSLLV    = 0x04
	fnSRLV    = 0x06
	fnSRAV    = 0x07
	fnJR      = 0x08
	fnJALR    = 0x09
	fnMOVZ    = 0x0A
	fnMOVN    = 0x0B
	fnSYSCALL = 0x0C
	fnBREAK   = 0x0D
	fnMFHI    = 0x10
	fnMTHI    = 0x11
	fnMFLO    = 0x12
	fnMTLO    = 0x13
	fnDSLLV   = 0x14
	fnDSRLV   = 0x16
	fnDSRAV   = 0x17
	fnMULT    = 0x18
	fnMULTU   = 0x19
	fnDIV     = 0x1A
	fnDIVU    = 0x1B
	fnDMULT   = 0x1C
	fnDMULTU  = 0x1D
	fnDDIV    = 0x1E
	fnDDIVU   = 0x1F
	fnADD     = 0x20
	fnADDU    = 0x21
	fnSUB     = 0x22
	fnSUBU    = 0x23
	fnAND     = 0x24
	fnOR      = 0x25
	fnXOR     = 0x26
	fnNOR     = 0x27
	fnSLT     = 0x2A
	fnSLTU    = 0x2B
	fnDADD    = 0x2C
	fnDADDU   = 0x2D
	fnDSUB    = 0x2E
	fnDSUBU   = 0x2F
	fnTGE     = 0x30
	fnTGEU    = 0x31
	fnTLT     = 0x32
	fnTLTU    = 0x33
	fnTEQ     = 0x34
	fnTNE     = 0x36
	fnDSLL    = 0x38
	fnDSRL    = 0x3A
	fnDSRA    = 0x3B
	fnDSLL32  = 0x3C
	fnDSRL32  = 0x3E
	fnDSRA32  = 0x3F
)

// REGIMM (opcode 1) rt-field sub-opcodes.
const (
	riBLTZ    = 0x00
	riBGEZ    = 0x01
	riBLTZL   = 0x02
	riBGEZL   = 0x03
	riTGEI    = 0x08
	riTGEIU   = 0x09
	riTLTI    = 0x0A
	riTLTIU   = 0x0B
	riTEQI    = 0x0C
	riTNEI    = 0x0E
	riBLTZAL  = 0x10
	riBGEZAL  = 0x11
	riBLTZALL = 0x12
	riBGEZALL = 0x13
)

// COP0 (opcode 0x10) rs-field sub-opcodes and, when rs==COFUN, funct codes.
const (
	cp0MF  = 0x00
	cp0DMF = 0x01
	cp0MT  = 0x04
	cp0DMT = 0x05
	cp0CO  = 0x10 // rs value marking a TLB/ERET "CO" function in Funct

	cp0fnTLBR  = 0x01
	cp0fnTLBWI = 0x02
	cp0fnTLBWR = 0x06
	cp0fnTLBP  = 0x08
	cp0fnERET  = 0x18
)
