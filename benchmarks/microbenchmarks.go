package benchmarks

// GetMicrobenchmarks returns the built-in benchmark programs. Each one
// targets a single part of the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticChain(),
		loopCountdown(),
		memoryCopy(),
		stackRoundTrip(),
		factorial(),
		rotateIdentity(),
	}
}

// GetCoreBenchmarks returns a quick subset: a loop, memory traffic and the
// multiplier.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopCountdown(),
		memoryCopy(),
		factorial(),
	}
}

func arithmeticChain() Benchmark {
	return Benchmark{
		Name:        "arithmetic_chain",
		Description: "straight-line ALU and shift operations",
		Source: `
		mov r1, #1
		mov r2, #2
		add r0, r1, r2     ; 3
		add r0, r0, r2     ; 5
		sub r0, r0, r1     ; 4
		xor r3, r0, r1     ; 5
		and r4, r3, r2     ; 0
		or  r4, r4, r1     ; 1
		shl r5, r0, #3     ; 32
		shr r6, r5, #2     ; 8
		halt
		`,
		Expected: map[uint8]uint16{0: 4, 3: 5, 4: 1, 5: 32, 6: 8},
	}
}

func loopCountdown() Benchmark {
	return Benchmark{
		Name:        "loop_countdown",
		Description: "sum of 1..10 in a counted loop - exercises the branch predictor",
		Source: `
		.equ N 10
		      mov r0, #N
		      mov r1, #1
		      mov r3, #0
		loop: add r3, r3, r0
		      sub r0, r0, r1
		      cmp r0, r2
		      jgt loop
		      halt
		`,
		Expected: map[uint8]uint16{0: 0, 3: 55},
	}
}

func memoryCopy() Benchmark {
	return Benchmark{
		Name:        "memory_copy",
		Description: "fill then copy a word array - exercises the data cache",
		Source: `
		.equ SRC   0x10
		.equ DST   0x40
		.equ COUNT 4
		      mov r0, #SRC
		      mov r1, #DST
		      mov r2, #COUNT
		      mov r4, #2
		      mov r5, #1
		      mov r6, #0
		init: store [r0], r2
		      add r0, r0, r4
		      sub r2, r2, r5
		      cmp r2, r6
		      jgt init
		      mov r0, #SRC
		      mov r2, #COUNT
		copy: load r3, [r0]
		      store [r1], r3
		      add r0, r0, r4
		      add r1, r1, r4
		      sub r2, r2, r5
		      cmp r2, r6
		      jgt copy
		      mov r1, #DST
		      load r7, [r1]
		      halt
		`,
		Expected: map[uint8]uint16{3: 1, 7: 4},
	}
}

func stackRoundTrip() Benchmark {
	return Benchmark{
		Name:        "stack_round_trip",
		Description: "three pushes then three pops",
		Source: `
		mov r0, #1
		mov r1, #2
		mov r2, #3
		push r0
		push r1
		push r2
		pop r3
		pop r4
		pop r5
		halt
		`,
		Expected: map[uint8]uint16{3: 3, 4: 2, 5: 1},
	}
}

func factorial() Benchmark {
	return Benchmark{
		Name:        "factorial",
		Description: "5! with MUL in a loop",
		Source: `
		      mov r0, #5
		      mov r1, #1
		      mov r2, #1
		      mov r3, #0
		loop: mul r1, r1, r0
		      sub r0, r0, r2
		      cmp r0, r3
		      jgt loop
		      halt
		`,
		Expected: map[uint8]uint16{1: 120},
	}
}

func rotateIdentity() Benchmark {
	return Benchmark{
		Name:        "rotate_identity",
		Description: "sixteen ROLs return the original value",
		Source: `
		      mov r0, #0xA5
		      mov r1, r0
		      mov r2, #16
		      mov r3, #1
		      mov r4, #0
		loop: rol r1, r1
		      sub r2, r2, r3
		      cmp r2, r4
		      jgt loop
		      halt
		`,
		Expected: map[uint8]uint16{1: 0xA5},
	}
}
