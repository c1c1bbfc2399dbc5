package charts

import (
	"bytes"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleData(n int) ChartData {
	d := ChartData{}
	ice := Dataset{Label: "Dow's Lake", BorderColor: "rgb(75, 192, 192)", BackgroundColor: "#4bc0c033", Tension: 0.4}
	flat := Dataset{Label: "NAC", BorderColor: "#36a2eb", Tension: 0.4}
	for i := 0; i < n; i++ {
		d.Labels = append(d.Labels, "09:00")
		ice.Data = append(ice.Data, 30+float64(i)/2)
		flat.Data = append(flat.Data, 25)
	}
	d.Datasets = []Dataset{ice, flat}
	return d
}

func TestPNGChartRenders(t *testing.T) {
	tests := []struct {
		name   string
		points int
		ok     bool
	}{
		{"twelve points", 12, true},
		{"single point", 1, true},
		{"no points", 0, false},
	}

	lib := &PNGLibrary{Width: 640, Height: 320}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := lib.NewChart("iceThicknessChart", sampleData(tt.points), ChartOptions{Type: "line", LegendPosition: "top", YAxisTitle: "Ice Thickness (cm)"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			png, rev, ok := c.(Image).PNG()
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if rev != 1 {
				t.Errorf("expected revision 1, got %d", rev)
			}
			if ok && !bytes.HasPrefix(png, pngSignature) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestPNGChartUpdateRedraws(t *testing.T) {
	lib := &PNGLibrary{Width: 640, Height: 320}
	c, err := lib.NewChart("temperatureChart", sampleData(0), ChartOptions{Type: "line"})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Update(func(d *ChartData) { *d = sampleData(5) }); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	_, rev, ok := c.(Image).PNG()
	if !ok || rev != 2 {
		t.Errorf("expected a rendering at revision 2, got ok=%v rev=%d", ok, rev)
	}
	if got := len(c.Data().Labels); got != 5 {
		t.Errorf("expected 5 labels, got %d", got)
	}
}

func TestPNGChartFailedUpdateKeepsState(t *testing.T) {
	lib := &PNGLibrary{Width: 640, Height: 320}
	c, err := lib.NewChart("iceThicknessChart", sampleData(3), ChartOptions{Type: "line"})
	if err != nil {
		t.Fatal(err)
	}
	before, rev, _ := c.(Image).PNG()

	err = c.Update(func(d *ChartData) {
		d.Labels = append(d.Labels, "09:15")
		d.Datasets[0].BorderColor = "rgb(300, 0, 0)"
	})
	if err == nil {
		t.Fatal("expected a color error")
	}

	after, afterRev, ok := c.(Image).PNG()
	if !ok || afterRev != rev || !bytes.Equal(after, before) {
		t.Errorf("rendering changed after failed update (rev %d -> %d)", rev, afterRev)
	}
	data := c.Data()
	if len(data.Labels) != 3 || data.Datasets[0].BorderColor != "rgb(75, 192, 192)" {
		t.Errorf("data changed after failed update: %+v", data)
	}
}

func TestPNGLibraryRejectsUnknownType(t *testing.T) {
	lib := &PNGLibrary{}
	if _, err := lib.NewChart("x", sampleData(2), ChartOptions{Type: "bar"}); err == nil {
		t.Error("expected an error for bar charts")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    drawing.Color
		wantErr bool
	}{
		{"rgb(75, 192, 192)", drawing.Color{R: 75, G: 192, B: 192, A: 255}, false},
		{"rgb(255,99,132)", drawing.Color{R: 255, G: 99, B: 132, A: 255}, false},
		{"rgba(54, 162, 235, 0.2)", drawing.Color{R: 54, G: 162, B: 235, A: 51}, false},
		{"#36a2eb", drawing.Color{R: 54, G: 162, B: 235, A: 255}, false},
		{"#36a2eb33", drawing.Color{R: 54, G: 162, B: 235, A: 0x33}, false},
		{"rgb(300, 0, 0)", drawing.Color{}, true},
		{"blue", drawing.Color{}, true},
		{"#abc", drawing.Color{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, expected %+v", tt.in, got, tt.want)
		}
	}
}

func TestTranslucent(t *testing.T) {
	if got := Translucent("rgb(75, 192, 192)"); got != "#4bc0c033" {
		t.Errorf("expected #4bc0c033, got %q", got)
	}
	if got := Translucent("nonsense"); got != "nonsense" {
		t.Errorf("expected input back for unparseable color, got %q", got)
	}
}
