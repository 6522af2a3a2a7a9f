package layout

import "testing"

func TestNewPlanDerivesCropsAndScales(t *testing.T) {
	webcam := Region{X1: 1500, Y1: 700, X2: 1900, Y2: 1000}
	gameplay := Region{X1: 420, Y1: 0, X2: 1500, Y2: 1080}

	plan := NewPlan(webcam, gameplay)

	if want := (Crop{X: 1500, Y: 700, Width: 400, Height: 300}); plan.Webcam.Crop != want {
		t.Fatalf("webcam crop = %+v, want %+v", plan.Webcam.Crop, want)
	}
	if want := (Crop{X: 420, Y: 0, Width: 1080, Height: 1080}); plan.Gameplay.Crop != want {
		t.Fatalf("gameplay crop = %+v, want %+v", plan.Gameplay.Crop, want)
	}
	if plan.Webcam.Scale != (Size{Width: 1080, Height: 840}) {
		t.Fatalf("webcam scale = %+v", plan.Webcam.Scale)
	}
	if plan.Gameplay.Scale != (Size{Width: 1080, Height: 1080}) {
		t.Fatalf("gameplay scale = %+v", plan.Gameplay.Scale)
	}
	if plan.Canvas() != (Size{Width: 1080, Height: 1920}) {
		t.Fatalf("canvas = %+v", plan.Canvas())
	}
}

func TestNewPlanDoesNotValidateBounds(t *testing.T) {
	plan := NewPlan(Region{X1: 5000, Y1: 5000, X2: 6000, Y2: 6000}, Region{})
	if plan.Webcam.Crop.X != 5000 || plan.Gameplay.Crop.Width != 0 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestRegionFromRect(t *testing.T) {
	r := RegionFromRect(10, 20, 300, 200)
	if r != (Region{X1: 10, Y1: 20, X2: 310, Y2: 220}) {
		t.Fatalf("unexpected region %+v", r)
	}
	if r.String() != "10,20,300,200" {
		t.Fatalf("unexpected string %q", r.String())
	}
	if !RegionFromRect(0, 0, 0, 0).IsZero() {
		t.Fatal("all-zero rect should be zero region")
	}
	if RegionFromRect(0, 0, 1, 0).IsZero() {
		t.Fatal("non-zero width should not be zero region")
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    Region
		wantErr bool
	}{
		{in: "10,20,300,200", want: Region{10, 20, 310, 220}},
		{in: " 10, 20, 300, 200 ", want: Region{10, 20, 310, 220}},
		{in: "1 2 3 4", want: Region{1, 2, 4, 6}},
		{in: "0,0,0,0", want: Region{}},
		{in: "1,2,3", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "1,2,-3,4", wantErr: true},
		{in: "-1,2,3,4", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRect(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRect(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRect(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRect(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
