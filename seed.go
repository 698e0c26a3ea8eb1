package insighthub

import (
	"context"
	"errors"

	"github.com/eringen/insighthub/content"
)

// SeedReport counts what Seed created. Existing rows are left untouched.
type SeedReport struct {
	Categories int
	Posts      int
}

var seedCategories = []string{"Technology", "Lifestyle", "Business", "Health", "Travel"}

type seedPost struct {
	category string
	input    PostInput
}

var seedPosts = []seedPost{
	{
		category: "business",
		input: PostInput{
			Title:   "10 Essential Tips for Productive Remote Work",
			Slug:    "essential-tips-productive-remote-work",
			Excerpt: "Discover proven strategies to maximize your productivity while working from home. From setting up the perfect workspace to maintaining work-life balance.",
			Content: `<h2>Introduction</h2>
<p>Remote work has become the new normal for millions of professionals worldwide. Whether you are a seasoned remote worker or just starting out, these tips will help you stay productive and keep a healthy work-life balance.</p>
<h2>1. Create a Dedicated Workspace</h2>
<p>A specific area for work helps your brain switch into work mode. It does not have to be a separate room; a corner of the living room works if it is used for work only.</p>
<h2>2. Stick to a Routine</h2>
<p>Wake up at the same time every day, get dressed, and start work at a consistent time. Structure keeps you disciplined.</p>
<h2>3. Take Regular Breaks</h2>
<p>Work for 25 minutes, then take a 5-minute break. After four cycles, take a longer break. This keeps your mind fresh and prevents burnout.</p>
<h2>4. Communicate Effectively</h2>
<p>Over-communicate with your team. Use video calls when possible, keep your status updated, and ask questions early.</p>
<h2>5. Set Boundaries</h2>
<p>When your work day ends, step away from your workspace and turn off notifications.</p>
<h2>Conclusion</h2>
<p>Remote work offers incredible flexibility, but it requires discipline and the right habits.</p>`,
			Tags:      "remote work, productivity, work from home, tips",
			Published: true,
		},
	},
	{
		category: "technology",
		input: PostInput{
			Title:   "The Ultimate Guide to Starting a Blog in 2024",
			Slug:    "ultimate-guide-starting-blog-2024",
			Excerpt: "Learn everything you need to know about starting a successful blog. From choosing your niche to monetization strategies.",
			Content: `<h2>Why Start a Blog?</h2>
<p>Blogging remains one of the most powerful ways to share your knowledge, build an audience, and even generate income.</p>
<h2>Step 1: Choose Your Niche</h2>
<p>The most successful blogs focus on a specific topic you could write about consistently for years.</p>
<h2>Step 2: Select Your Platform</h2>
<p>Hosted builders and self-hosted engines each have their pros and cons. Pick the one you will actually keep using.</p>
<h2>Step 3: Create Quality Content</h2>
<p>Focus on valuable, well-researched articles that solve problems for your readers.</p>
<h2>Step 4: Promote Your Content</h2>
<p>Use social media, email, and search to drive traffic. Post regularly and engage with your audience.</p>
<h2>Step 5: Monetize</h2>
<p>Once you have traffic, explore ads, affiliate links, sponsorships, digital products, or courses.</p>
<h2>Final Thoughts</h2>
<p>Starting a blog takes time and effort, but the rewards can be significant.</p>`,
			Tags:      "blogging, beginners, tutorial, 2024",
			Published: true,
		},
	},
	{
		category: "lifestyle",
		input: PostInput{
			Title:   "5 Morning Habits That Will Transform Your Day",
			Slug:    "morning-habits-transform-your-day",
			Excerpt: "Start your day right with these powerful morning habits used by successful people around the world.",
			Content: `<h2>The Power of Morning Routines</h2>
<p>How you start your morning often sets the tone for your entire day.</p>
<h2>1. Wake Up Early</h2>
<p>Start with just 30 minutes earlier than usual and gradually adjust.</p>
<h2>2. Hydrate First Thing</h2>
<p>Drink a full glass of water before anything else.</p>
<h2>3. Move Your Body</h2>
<p>Yoga, a quick workout, or stretching increases blood flow and boosts your mood.</p>
<h2>4. Practice Mindfulness</h2>
<p>Even 5 minutes of meditation or journaling can reduce stress and increase focus.</p>
<h2>5. Eat a Healthy Breakfast</h2>
<p>Fuel your body with protein and complex carbohydrates.</p>
<h2>Conclusion</h2>
<p>Start with one habit and build from there.</p>`,
			Tags:      "morning routine, habits, productivity, wellness",
			Published: true,
		},
	},
}

// Seed creates the sample categories and posts. It is safe to run more
// than once: categories and posts whose slug already exists are skipped.
func Seed(ctx context.Context, s *Store) (SeedReport, error) {
	var rep SeedReport
	ids := make(map[string]string, len(seedCategories))
	for _, name := range seedCategories {
		cat, err := s.CreateCategory(ctx, CategoryInput{Name: name})
		if errors.Is(err, ErrDuplicateSlug) {
			cat, err = s.CategoryBySlug(ctx, content.Slugify(name))
		} else if err == nil {
			rep.Categories++
		}
		if err != nil {
			return rep, err
		}
		ids[cat.Slug] = cat.ID
	}

	for _, sp := range seedPosts {
		in := sp.input
		in.CategoryID = ids[sp.category]
		_, err := s.CreatePost(ctx, in)
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return rep, err
		}
		rep.Posts++
	}
	return rep, nil
}
