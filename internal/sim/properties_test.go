package sim_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	binaryMass = 1000.0
	binarySep  = 200.0
)

// binary builds two equal masses on a circular orbit about the origin.
func binary(p dynamo.Params) *sim.Simulator {
	s := sim.New(nil, p)
	r := binarySep / 2
	v := math.Sqrt(p.G*binaryMass*r) / binarySep

	_, err := s.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{-r, 0}, Vel: mgl64.Vec2{0, -v}, Mass: binaryMass, Radius: 5})
	Expect(err).NotTo(HaveOccurred())
	_, err = s.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{r, 0}, Vel: mgl64.Vec2{0, v}, Mass: binaryMass, Radius: 5})
	Expect(err).NotTo(HaveOccurred())
	return s
}

func finalPositions(scheme integrators.Scheme, dt, T float64) []mgl64.Vec2 {
	s := binary(dynamo.Params{G: 6.674, Epsilon: 1e-9, Workers: 1})
	_, err := s.Advance(dt, scheme, int(math.Round(T/dt)))
	Expect(err).NotTo(HaveOccurred())

	var out []mgl64.Vec2
	for _, st := range s.States() {
		out = append(out, st.Pos)
	}
	return out
}

var _ = Describe("Simulator", func() {
	var params dynamo.Params

	BeforeEach(func() {
		params = dynamo.Params{G: 6.674, Epsilon: 1e-9, Workers: 4}
	})

	Describe("momentum", func() {
		DescribeTable("is conserved while an orbiting pair does not collide",
			func(scheme integrators.Scheme) {
				s := binary(params)
				before := physics.Momentum(s.States())

				for i := 0; i < 200; i++ {
					rep, err := s.Advance(0.05, scheme, 5)
					Expect(err).NotTo(HaveOccurred())
					Expect(rep.Merges).To(BeEmpty())
				}

				after := physics.Momentum(s.States())
				Expect(s.Len()).To(Equal(2))
				Expect(after[0]).To(BeNumerically("~", before[0], 1e-9))
				Expect(after[1]).To(BeNumerically("~", before[1], 1e-9))
			},
			Entry("semi-implicit Euler", integrators.Euler),
			Entry("velocity Verlet", integrators.Verlet),
		)
	})

	Describe("merging", func() {
		It("conserves mass and momentum and sums sphere volumes", func() {
			s := sim.New(nil, params)
			_, _ = s.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{1, 0}, Mass: 10, Radius: 3})
			_, _ = s.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{4, 0}, Vel: mgl64.Vec2{-1, 0}, Mass: 10, Radius: 2})

			rep, err := s.Advance(0.001, integrators.Verlet, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Merges).To(HaveLen(1))

			states := s.States()
			Expect(states).To(HaveLen(1))
			Expect(states[0].Mass).To(Equal(20.0))
			Expect(states[0].Vel.Len()).To(BeNumerically("<", 1e-9))
			Expect(states[0].Radius).To(BeNumerically("~", math.Cbrt(27+8), 1e-12))
		})

		It("never merges a body twice in one tick", func() {
			s := sim.New(nil, params)
			for _, p := range []mgl64.Vec2{{0, 0}, {3, 0}, {0, 3}} {
				_, err := s.Insert(dynamo.BodySpec{Pos: p, Mass: 1, Radius: 5})
				Expect(err).NotTo(HaveOccurred())
			}

			rep, err := s.Advance(0.001, integrators.Verlet, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Merges).To(HaveLen(1))
			Expect(s.Len()).To(Equal(2))

			seen := map[dynamo.BodyID]bool{}
			for _, m := range rep.Merges {
				Expect(seen[m.A] || seen[m.B]).To(BeFalse())
				seen[m.A], seen[m.B] = true, true
			}
			Expect(physics.Momentum(s.States()).Len()).To(BeNumerically("<", 1e-9))
		})

		It("absorbs the leftover body on a later tick", func() {
			s := sim.New(nil, params)
			for _, p := range []mgl64.Vec2{{0, 0}, {3, 0}, {0, 3}} {
				_, _ = s.Insert(dynamo.BodySpec{Pos: p, Mass: 1, Radius: 5})
			}

			_, err := s.Advance(0.001, integrators.Verlet, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(1))
			Expect(s.States()[0].Mass).To(Equal(3.0))
		})
	})

	Describe("trails", func() {
		It("hold exactly capacity points, oldest from tick N-capacity+1", func() {
			const capacity, n = 7, 30
			s := sim.New(nil, params)
			_, err := s.Insert(dynamo.BodySpec{Vel: mgl64.Vec2{2, 0}, Mass: 1, Radius: 1, TrailCapacity: capacity})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Advance(1, integrators.Euler, n)
			Expect(err).NotTo(HaveOccurred())

			trail := s.Query()[0].Trail
			Expect(trail).To(HaveLen(capacity))
			Expect(trail[0][0]).To(Equal(2.0 * (n - capacity + 1)))
		})
	})

	Describe("integrators", func() {
		It("converge to the same orbit as dt shrinks", func() {
			const T = 20.0
			gap := func(dt float64) float64 {
				e := finalPositions(integrators.Euler, dt, T)
				v := finalPositions(integrators.Verlet, dt, T)
				worst := 0.0
				for i := range e {
					worst = math.Max(worst, e[i].Sub(v[i]).Len())
				}
				return worst
			}

			coarse := gap(0.01)
			fine := gap(0.001)
			Expect(fine).To(BeNumerically("<", coarse/2))
			Expect(fine).To(BeNumerically("<", 0.5))
		})
	})

	Describe("pausing", func() {
		It("skips every phase", func() {
			s := binary(params)
			before := s.Query()
			s.Pause()

			rep, err := s.Advance(0.1, integrators.Verlet, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Ticks).To(BeZero())
			Expect(s.Query()).To(Equal(before))
		})
	})
})
