package emulator_test

import (
	"bytes"
	"errors"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/mipsim/config"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/emulator"
)

const sumProgram = `.data
var:    .word 0
.text
main:   addi $t0, $zero, 5
        addi $t1, $zero, 7
        add $t2, $t0, $t1
        sw $t2, var
        lw $t3, var
        li $v0, 1
        move $a0, $t3
        syscall
        li $v0, 10
        syscall
        addi $t4, $zero, 1
`

const branchProgram = `
        addi $t0, $zero, 1
        beq $t0, $t0, target
        addi $t1, $zero, 1
        addi $t2, $zero, 2
target: addi $t3, $zero, 3
`

var _ = Describe("Emulator", func() {
	var (
		cfg    *config.Config
		emu    *emulator.Emulator
		output *bytes.Buffer
	)

	BeforeEach(func() {
		cfg = config.Default()
		output = &bytes.Buffer{}
	})

	// load creates the emulator from cfg and loads a program.
	load := func(source string) {
		var err error
		emu, err = emulator.NewEmulator(cfg)
		Expect(err).NotTo(HaveOccurred())
		emu.Console.Output = output
		Expect(emu.Load(strings.NewReader(source))).To(Succeed())
	}

	Describe("NewEmulator", func() {
		It("should use the default configuration", func() {
			emu, err := emulator.NewEmulator(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(emu.Mode).To(Equal(cpu.MODE_REFERENCE))
			Expect(emu.ICache.Capacity()).To(Equal(cpu.CACHE_CAPACITY))
			Expect(emu.DCache.Capacity()).To(Equal(cpu.CACHE_CAPACITY))
			Expect(emu.Memory.Size()).To(Equal(cpu.MEMORY_SIZE))
			Expect(emu.Pc).To(Equal(uint32(cpu.TEXT_START)))
		})

		It("should apply the configuration", func() {
			cfg.Mode = "canonical"
			cfg.ICacheCapacity = 2
			cfg.HardZero = true
			emu, err := emulator.NewEmulator(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(emu.Mode).To(Equal(cpu.MODE_CANONICAL))
			Expect(emu.ICache.Capacity()).To(Equal(2))
			Expect(emu.HardZero).To(BeTrue())
		})

		It("should reject an invalid configuration", func() {
			cfg.Mode = "superscalar"
			_, err := emulator.NewEmulator(cfg)
			Expect(err).To(MatchError(cpu.ErrModeInvalid))
		})
	})

	Describe("Run", func() {
		It("should run a program to its exit syscall", func() {
			load(sumProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(emu.State).To(Equal(cpu.STATE_HALTED))
			Expect(emu.Halt).To(Equal(cpu.HALT_EXIT))
			Expect(emu.Register[cpu.REG_T2]).To(Equal(uint32(12)))
			Expect(emu.Register[cpu.REG_T3]).To(Equal(uint32(12)))
			Expect(emu.Register[cpu.REG_T4]).To(BeZero())
			Expect(output.String()).To(Equal("12\n"))
			Expect(emu.Console.Printed()).To(Equal(1))
			Expect(emu.Ticks()).To(Equal(12))
		})

		It("should serve the reload of a stored word from the data cache", func() {
			load(sumProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(emu.Data()[0:4]).To(Equal([]byte{0, 0, 0, 12}))
			Expect(emu.DCache.Stats().Hits).To(Equal(uint64(1)))
			Expect(emu.DCache.Stats().Misses).To(BeZero())
		})

		It("should count retired instructions per line", func() {
			load(sumProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(emu.Executed(4)).To(Equal(1))
			// lui + sw
			Expect(emu.Executed(7)).To(Equal(2))
			Expect(emu.Executed(14)).To(BeZero())
		})

		It("should finish without error when running past the last instruction", func() {
			load("addi $t0, $zero, 1\naddi $t1, $zero, 2\n")

			done, err := emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())

			Expect(emu.Run()).To(Succeed())
			Expect(emu.Halt).To(Equal(cpu.HALT_END))

			done, err = emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
		})

		It("should stop a runaway program at the tick limit", func() {
			cfg.MaxTicks = 50
			load("loop: j loop\n")

			err := emu.Run()
			Expect(err).To(MatchError(emulator.ErrTickLimit))
			Expect(emu.Ticks()).To(Equal(50))

			var rerr *emulator.ErrRuntime
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.LineNo).To(Equal(1))
			Expect(rerr.Pc).To(Equal(uint32(0x100)))
		})

		It("should locate an execution fault", func() {
			load("addi $t0, $zero, 1\n\nmult $t0, $t0\n")

			err := emu.Run()
			Expect(err).To(MatchError(cpu.ErrFunct(cpu.FUNCT_MULT)))

			var rerr *emulator.ErrRuntime
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.LineNo).To(Equal(3))
			Expect(rerr.Pc).To(Equal(uint32(0x104)))
			Expect(emu.Halt).To(Equal(cpu.HALT_FAULT))
		})
	})

	Describe("Branch arithmetic", func() {
		It("should land before the label in reference mode", func() {
			load(branchProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(emu.Register[cpu.REG_T1]).To(BeZero())
			Expect(emu.Register[cpu.REG_T2]).To(Equal(uint32(2)))
			Expect(emu.Register[cpu.REG_T3]).To(Equal(uint32(3)))
		})

		It("should land on the label in canonical mode", func() {
			cfg.Mode = "canonical"
			load(branchProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(emu.Register[cpu.REG_T1]).To(BeZero())
			Expect(emu.Register[cpu.REG_T2]).To(BeZero())
			Expect(emu.Register[cpu.REG_T3]).To(Equal(uint32(3)))
		})
	})

	Describe("Load", func() {
		It("should report the line of an assembly error", func() {
			var err error
			emu, err = emulator.NewEmulator(cfg)
			Expect(err).NotTo(HaveOccurred())

			err = emu.Load(strings.NewReader("syscall\nlw $t0, nowhere\n"))
			Expect(err).To(MatchError(cpu.ErrSymbolMissing("nowhere")))

			var serr *cpu.ErrSyntax
			Expect(errors.As(err, &serr)).To(BeTrue())
			Expect(serr.LineNo).To(Equal(2))
		})

		It("should list symbols and labels in address order", func() {
			load(".data\nb: .word 1\na: .word 2\n.text\nmain: syscall\nend: syscall\n")

			var names []string
			for name := range emu.Names() {
				names = append(names, name)
			}
			Expect(names).To(Equal([]string{"b", "a", "main", "end"}))
		})
	})

	Describe("Reset", func() {
		It("should restore the data image and clear the run state", func() {
			load(sumProgram)
			Expect(emu.Run()).To(Succeed())

			Expect(emu.Reset()).To(Succeed())
			Expect(emu.Data()[0:4]).To(Equal([]byte{0, 0, 0, 0}))
			Expect(emu.State).To(Equal(cpu.STATE_RUNNING))
			Expect(emu.Ticks()).To(BeZero())
			Expect(emu.Console.Printed()).To(BeZero())
			Expect(emu.Executed(4)).To(BeZero())
			Expect(emu.LineNo()).To(Equal(4))
			Expect(emu.Code()).To(Equal(cpu.MakeI(cpu.OP_ADDI, cpu.REG_ZERO, cpu.REG_T0, 5)))

			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("12\n12\n"))
		})
	})

	Describe("Verbose", func() {
		var logged *bytes.Buffer

		BeforeEach(func() {
			logged = &bytes.Buffer{}
			log.SetOutput(logged)
			DeferCleanup(func() {
				log.SetOutput(GinkgoWriter)
			})
		})

		It("should trace cache events with their source line", func() {
			cfg.Verbose = true
			load(sumProgram)

			Expect(emu.Run()).To(Succeed())
			Expect(logged.String()).To(ContainSubstring("icache: line 4: Cache Miss 0x0100"))
			Expect(logged.String()).To(ContainSubstring("dcache: line 8: Cache Hit 0x0000"))
		})
	})
})
